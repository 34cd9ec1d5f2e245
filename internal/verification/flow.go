package verification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrInFlight is returned when a verification is requested while another
	// one is still waiting for the backend. The later request is dropped.
	ErrInFlight = errors.New("verification: a verification request is already in progress")
	// ErrResendLocked is returned by Resend before the countdown reaches zero.
	ErrResendLocked = errors.New("verification: resend is not available yet")
	// ErrNoPhone is returned by Resend before any code was sent.
	ErrNoPhone = errors.New("verification: no phone number to resend to")
	// ErrNotVerified is returned when the backend answered successfully but
	// did not accept the code.
	ErrNotVerified = errors.New("verification: code not accepted")
)

// DefaultRejectedMessage is shown when a failed verification carries no message.
const DefaultRejectedMessage = "Código inválido"

// FlowOptions configures a Flow.
type FlowOptions struct {
	// CountdownSeconds defaults to CodeTTLSeconds.
	CountdownSeconds int
	// OnVerified runs after the backend accepts the code. It typically
	// establishes the session. An error is shown as the form error.
	OnVerified func(ctx context.Context, res *VerifyCodeResult) error
}

// Snapshot is what a form renders.
type Snapshot struct {
	Phone     string
	Sent      bool
	Digits    [CodeLength]string
	Focus     int
	Entry     EntryState
	Remaining int
	Countdown string
	CanResend bool
	Warning   bool
	Loading   bool
	Error     string
	Success   string
}

// Flow is the state of one verification form. It is not persisted.
type Flow struct {
	verifier   Verifier
	onVerified func(ctx context.Context, res *VerifyCodeResult) error
	countdown  *Countdown
	inFlight   atomic.Bool

	mu      sync.Mutex
	phone   string
	sent    bool
	entry   CodeEntry
	loading bool
	errMsg  string
	success string
}

// NewFlow returns an empty form backed by v.
func NewFlow(v Verifier, opts FlowOptions) *Flow {
	return &Flow{
		verifier:   v,
		onVerified: opts.OnVerified,
		countdown:  NewCountdown(opts.CountdownSeconds),
	}
}

// Snapshot returns the current form state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Phone:     f.phone,
		Sent:      f.sent,
		Digits:    f.entry.Digits(),
		Focus:     f.entry.Focus(),
		Entry:     f.entry.State(),
		Remaining: f.countdown.Remaining(),
		Countdown: f.countdown.String(),
		CanResend: f.countdown.CanResend(),
		Warning:   f.countdown.Warning(),
		Loading:   f.loading || f.inFlight.Load(),
		Error:     f.errMsg,
		Success:   f.success,
	}
}

// SendCode runs phase one for rawPhone. On success the countdown restarts,
// the code fields are cleared and focus returns to the first slot.
func (f *Flow) SendCode(ctx context.Context, rawPhone string) (*SendCodeResult, error) {
	phone, err := ValidatePhone(rawPhone)
	if err != nil {
		f.setError(Message(err))
		return nil, err
	}

	f.mu.Lock()
	f.loading = true
	f.mu.Unlock()

	res, err := f.verifier.SendCode(ctx, phone)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.errMsg, f.success = Message(err), ""
		return nil, err
	}

	f.phone = phone
	if res.PhoneNumber != "" {
		f.phone = res.PhoneNumber
	}
	f.sent = true
	f.entry.Clear()
	f.countdown.Reset()
	f.errMsg, f.success = "", res.Message
	return res, nil
}

// Resend repeats phase one for the current phone once the countdown is over.
func (f *Flow) Resend(ctx context.Context) (*SendCodeResult, error) {
	f.mu.Lock()
	phone, sent := f.phone, f.sent
	f.mu.Unlock()

	if !sent || phone == "" {
		return nil, ErrNoPhone
	}
	if !f.countdown.CanResend() {
		return nil, ErrResendLocked
	}

	f.mu.Lock()
	f.entry.Clear()
	f.errMsg, f.success = "", ""
	f.mu.Unlock()

	return f.SendCode(ctx, phone)
}

// TypeDigit enters input into slot and submits when the code is complete.
// The result is nil when nothing was submitted.
func (f *Flow) TypeDigit(ctx context.Context, slot int, input string) (*VerifyCodeResult, error) {
	f.mu.Lock()
	complete := f.entry.TypeDigit(slot, input)
	f.mu.Unlock()

	if !complete {
		return nil, nil
	}
	return f.Verify(ctx)
}

// Backspace handles the backspace key on slot.
func (f *Flow) Backspace(slot int) {
	f.mu.Lock()
	f.entry.Backspace(slot)
	f.mu.Unlock()
}

// Paste fills the slots from text and submits when four digits were pasted.
func (f *Flow) Paste(ctx context.Context, text string) (*VerifyCodeResult, error) {
	f.mu.Lock()
	complete := f.entry.Paste(text)
	f.mu.Unlock()

	if !complete {
		return nil, nil
	}
	return f.Verify(ctx)
}

// Verify runs phase two with the entered code. A rejected or failed attempt
// clears the code and refocuses the first slot; the countdown keeps running.
func (f *Flow) Verify(ctx context.Context) (*VerifyCodeResult, error) {
	if !f.inFlight.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	defer f.inFlight.Store(false)

	f.mu.Lock()
	phone, code := f.phone, f.entry.Code()
	f.mu.Unlock()

	if _, err := ValidatePhone(phone); err != nil {
		f.fail(Message(err))
		return nil, err
	}
	if err := ValidateCode(code); err != nil {
		f.fail(Message(err))
		return nil, err
	}

	f.mu.Lock()
	f.loading = true
	f.mu.Unlock()

	res, err := f.verifier.VerifyCode(ctx, phone, code)

	f.mu.Lock()
	f.loading = false
	f.mu.Unlock()

	if err != nil {
		f.fail(Message(err))
		return nil, err
	}
	if !res.Verified {
		msg := res.Message
		if msg == "" {
			msg = DefaultRejectedMessage
		}
		f.fail(msg)
		return res, ErrNotVerified
	}

	if f.onVerified != nil {
		if err := f.onVerified(ctx, res); err != nil {
			f.setError(err.Error())
			return res, err
		}
	}

	f.mu.Lock()
	f.errMsg, f.success = "", res.Message
	f.mu.Unlock()
	return res, nil
}

// Tick advances the countdown by one second.
func (f *Flow) Tick() int {
	return f.countdown.Tick()
}

// RunCountdown ticks once per interval until ctx is done.
func (f *Flow) RunCountdown(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Tick()
		}
	}
}

func (f *Flow) fail(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entry.Clear()
	f.errMsg, f.success = msg, ""
}

func (f *Flow) setError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errMsg, f.success = msg, ""
}
