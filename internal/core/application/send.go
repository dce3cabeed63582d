package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/ccoveille/go-safecast"
	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/photonwallet/photon/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// SendStep is the current position of a send flow. Each variant carries
// exactly the data that step needs, nothing more.
type SendStep interface {
	sendStep()
}

// StepInput waits for a destination string.
type StepInput struct{}

// StepAmount waits for an amount; the destination is parsed and valid but
// carries no amount of its own.
type StepAmount struct {
	Input  string
	Parsed domain.ParsedInput
}

// StepLnurl waits for an amount within the pay request's bounds, plus an
// optional comment.
type StepLnurl struct {
	Pay            domain.LnurlPayInput
	Parsed         domain.ParsedInput
	MinSats        uint64
	MaxSats        uint64
	CommentAllowed uint32
}

// StepProcessing means an engine call is in flight. No submissions are
// accepted until it settles.
type StepProcessing struct{}

// StepConfirm shows the prepared payment and waits for confirmation.
// Speed is only meaningful for onchain sends and starts unset; UseSpark
// only for bolt11 sends where a spark route exists.
type StepConfirm struct {
	Prepared domain.PreparedSend
	Speed    *domain.ConfirmationSpeed
	UseSpark bool
}

// StepLnurlConfirm shows a prepared LNURL payment and waits for
// confirmation.
type StepLnurlConfirm struct {
	Prepared domain.PreparedLnurlPay
}

// StepResult is terminal. Either Payment or Err is set.
type StepResult struct {
	Payment       *domain.Payment
	SuccessAction *domain.SuccessAction
	Err           error
}

func (StepInput) sendStep()        {}
func (StepAmount) sendStep()       {}
func (StepLnurl) sendStep()        {}
func (StepProcessing) sendStep()   {}
func (StepConfirm) sendStep()      {}
func (StepLnurlConfirm) sendStep() {}
func (StepResult) sendStep()       {}

// CanConfirm reports whether the flow has everything it needs to execute.
// Onchain sends require a speed tier first.
func (s StepConfirm) CanConfirm() bool {
	if _, ok := s.Prepared.Method.(domain.BitcoinSendMethod); ok {
		return s.Speed != nil
	}
	return true
}

// FeeSats returns the fee shown next to the confirm button. For onchain
// sends it is the selected tier's total; for bolt11 it follows the
// spark-or-lightning choice.
func (s StepConfirm) FeeSats() (uint64, bool) {
	switch m := s.Prepared.Method.(type) {
	case domain.BitcoinSendMethod:
		if s.Speed == nil {
			return 0, false
		}
		fee, ok := m.FeeQuote.Tier(*s.Speed)
		if !ok {
			return 0, false
		}
		return fee.Total(), true
	case domain.Bolt11SendMethod:
		if s.UseSpark && m.SparkTransferFeeSats != nil {
			return *m.SparkTransferFeeSats, true
		}
		return m.LightningFeeSats, true
	case domain.SparkSendMethod:
		return m.FeeSats, true
	}
	return 0, false
}

// SendFlow drives a single send from destination entry to settlement. All
// state transitions happen under one mutex; engine calls run without it,
// and results from a superseded attempt are dropped on the floor.
type SendFlow struct {
	mu   sync.Mutex
	gen  uint64
	step SendStep

	engine      func() (ports.WalletEngine, error)
	preferSpark func() bool
	onFinished  func(payment domain.Payment)
}

func NewSendFlow(
	engine func() (ports.WalletEngine, error),
	preferSpark func() bool,
	onFinished func(payment domain.Payment),
) *SendFlow {
	return &SendFlow{
		step:        StepInput{},
		engine:      engine,
		preferSpark: preferSpark,
		onFinished:  onFinished,
	}
}

func (f *SendFlow) Step() SendStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Reset abandons the flow. Any engine call still in flight keeps running
// but its result is discarded.
func (f *SendFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.step = StepInput{}
}

// SubmitInput parses the destination and routes it. Destinations with an
// embedded amount go straight to preparation.
func (f *SendFlow) SubmitInput(ctx context.Context, input string) (SendStep, error) {
	engine, gen, err := f.begin(func(step SendStep) error {
		if _, ok := step.(StepInput); !ok {
			return fmt.Errorf("no destination expected on current step")
		}
		return nil
	})
	if err != nil {
		return f.Step(), err
	}

	parsed, err := engine.ParseInput(ctx, input)
	if err != nil {
		return f.settle(gen, StepInput{}, &PreparationError{Err: fmt.Errorf("%w: %s", ErrInvalidDestination, err)})
	}

	return f.route(ctx, engine, gen, input, parsed)
}

// SubmitParsed routes a destination that was parsed ahead of time, for
// callers that scanned or validated the input themselves. The destination
// step is skipped.
func (f *SendFlow) SubmitParsed(ctx context.Context, input string, parsed domain.ParsedInput) (SendStep, error) {
	engine, gen, err := f.begin(func(step SendStep) error {
		if _, ok := step.(StepInput); !ok {
			return fmt.Errorf("no destination expected on current step")
		}
		return nil
	})
	if err != nil {
		return f.Step(), err
	}
	return f.route(ctx, engine, gen, input, parsed)
}

func (f *SendFlow) route(
	ctx context.Context, engine ports.WalletEngine, gen uint64,
	input string, parsed domain.ParsedInput,
) (SendStep, error) {
	route, err := RouteInput(input, parsed)
	if err != nil {
		return f.settle(gen, StepInput{}, &PreparationError{Err: err})
	}

	switch r := route.(type) {
	case RouteAmount:
		return f.settle(gen, StepAmount{Input: r.Input, Parsed: r.Parsed}, nil)
	case RouteLnurl:
		return f.settle(gen, StepLnurl{
			Pay:            r.Pay,
			Parsed:         r.Parsed,
			MinSats:        (r.Pay.MinSendable + 999) / 1000,
			MaxSats:        r.Pay.MaxSendable / 1000,
			CommentAllowed: r.Pay.CommentAllowed,
		}, nil)
	case RoutePrepare:
		prepared, err := engine.PrepareSendPayment(ctx, r.Input, r.AmountSats)
		if err != nil {
			return f.settle(gen, StepInput{}, &PreparationError{Err: err})
		}
		return f.settle(gen, f.confirmStep(*prepared), nil)
	}
	return f.settle(gen, StepInput{}, &PreparationError{Err: ErrInvalidDestination})
}

// SubmitAmount prepares the payment for an amountless destination.
func (f *SendFlow) SubmitAmount(ctx context.Context, amountSats uint64) (SendStep, error) {
	var from StepAmount
	engine, gen, err := f.begin(func(step SendStep) error {
		s, ok := step.(StepAmount)
		if !ok {
			return fmt.Errorf("no amount expected on current step")
		}
		from = s
		return nil
	})
	if err != nil {
		return f.Step(), err
	}

	if amountSats == 0 {
		return f.settle(gen, from, &PreparationError{Err: fmt.Errorf("amount must be positive")})
	}

	prepared, err := engine.PrepareSendPayment(ctx, from.Input, amountSats)
	if err != nil {
		return f.settle(gen, from, &PreparationError{Err: err})
	}
	return f.settle(gen, f.confirmStep(*prepared), nil)
}

// SubmitLnurlAmount validates the amount and comment against the pay
// request and prepares the LNURL payment.
func (f *SendFlow) SubmitLnurlAmount(ctx context.Context, amountSats uint64, comment string) (SendStep, error) {
	var from StepLnurl
	engine, gen, err := f.begin(func(step SendStep) error {
		s, ok := step.(StepLnurl)
		if !ok {
			return fmt.Errorf("no lnurl amount expected on current step")
		}
		from = s
		return nil
	})
	if err != nil {
		return f.Step(), err
	}

	if amountSats < from.MinSats || amountSats > from.MaxSats {
		return f.settle(gen, from, &PreparationError{Err: fmt.Errorf(
			"amount must be between %d and %d sats", from.MinSats, from.MaxSats,
		)})
	}
	commentLen, err := safecast.ToUint32(len(comment))
	if err != nil {
		return f.settle(gen, from, &PreparationError{Err: err})
	}
	if commentLen > from.CommentAllowed {
		return f.settle(gen, from, &PreparationError{Err: fmt.Errorf(
			"comment exceeds %d characters", from.CommentAllowed,
		)})
	}

	prepared, err := engine.PrepareLnurlPay(ctx, amountSats, comment, from.Pay, true)
	if err != nil {
		return f.settle(gen, from, &PreparationError{Err: err})
	}
	return f.settle(gen, StepLnurlConfirm{Prepared: *prepared}, nil)
}

// SelectSpeed picks the fee tier for an onchain send.
func (f *SendFlow) SelectSpeed(speed domain.ConfirmationSpeed) (SendStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	step, ok := f.step.(StepConfirm)
	if !ok {
		return f.step, fmt.Errorf("no speed selection expected on current step")
	}
	method, ok := step.Prepared.Method.(domain.BitcoinSendMethod)
	if !ok {
		return f.step, fmt.Errorf("speed selection only applies to onchain sends")
	}
	if _, ok := method.FeeQuote.Tier(speed); !ok {
		return f.step, fmt.Errorf("no %s tier in fee quote", speed)
	}
	step.Speed = &speed
	f.step = step
	return f.step, nil
}

// SetUseSpark switches a bolt11 send between the spark route and the
// lightning route. Enabling spark requires a spark route to exist.
func (f *SendFlow) SetUseSpark(useSpark bool) (SendStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	step, ok := f.step.(StepConfirm)
	if !ok {
		return f.step, fmt.Errorf("no route selection expected on current step")
	}
	method, ok := step.Prepared.Method.(domain.Bolt11SendMethod)
	if !ok {
		return f.step, fmt.Errorf("route selection only applies to bolt11 sends")
	}
	if useSpark && method.SparkTransferFeeSats == nil {
		return f.step, fmt.Errorf("no spark route for this invoice")
	}
	step.UseSpark = useSpark
	f.step = step
	return f.step, nil
}

// Confirm executes the prepared payment. Failures after this point land
// on the result step rather than bouncing back to confirmation.
func (f *SendFlow) Confirm(ctx context.Context) (SendStep, error) {
	f.mu.Lock()
	switch step := f.step.(type) {
	case StepConfirm:
		if !step.CanConfirm() {
			f.mu.Unlock()
			return f.Step(), fmt.Errorf("select a confirmation speed first")
		}
		engine, err := f.engine()
		if err != nil {
			f.mu.Unlock()
			return f.Step(), err
		}
		gen := f.gen
		f.step = StepProcessing{}
		f.mu.Unlock()

		options, err := sendOptions(step)
		if err != nil {
			return f.settle(gen, step, &PreparationError{Err: err})
		}
		payment, err := engine.SendPayment(ctx, step.Prepared, options)
		if err != nil {
			execErr := &ExecutionError{Err: err}
			step, settleErr := f.settle(gen, StepResult{Err: execErr}, nil)
			if settleErr != nil {
				return step, settleErr
			}
			return step, execErr
		}
		return f.finish(gen, StepResult{Payment: payment}, *payment)

	case StepLnurlConfirm:
		engine, err := f.engine()
		if err != nil {
			f.mu.Unlock()
			return f.Step(), err
		}
		gen := f.gen
		f.step = StepProcessing{}
		f.mu.Unlock()

		result, err := engine.LnurlPay(ctx, step.Prepared)
		if err != nil {
			execErr := &ExecutionError{Err: err}
			step, settleErr := f.settle(gen, StepResult{Err: execErr}, nil)
			if settleErr != nil {
				return step, settleErr
			}
			return step, execErr
		}
		return f.finish(gen, StepResult{
			Payment:       &result.Payment,
			SuccessAction: result.SuccessAction,
		}, result.Payment)

	default:
		f.mu.Unlock()
		return f.Step(), fmt.Errorf("nothing to confirm on current step")
	}
}

// begin validates the current step, captures the generation and flips the
// flow to processing. The caller runs its engine call without the lock and
// settles with the captured generation.
func (f *SendFlow) begin(check func(step SendStep) error) (ports.WalletEngine, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := check(f.step); err != nil {
		return nil, 0, err
	}
	engine, err := f.engine()
	if err != nil {
		return nil, 0, err
	}
	gen := f.gen
	f.step = StepProcessing{}
	return engine, gen, nil
}

// settle applies the outcome of an engine call unless the flow was reset
// while the call was in flight.
func (f *SendFlow) settle(gen uint64, step SendStep, err error) (SendStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.gen != gen {
		log.Debug("dropping stale send flow result")
		return f.step, ErrFlowStale
	}
	f.step = step
	return f.step, err
}

func (f *SendFlow) finish(gen uint64, step SendStep, payment domain.Payment) (SendStep, error) {
	result, err := f.settle(gen, step, nil)
	if err != nil {
		return result, err
	}
	if f.onFinished != nil {
		f.onFinished(payment)
	}
	return result, nil
}

func (f *SendFlow) confirmStep(prepared domain.PreparedSend) StepConfirm {
	step := StepConfirm{Prepared: prepared}
	if method, ok := prepared.Method.(domain.Bolt11SendMethod); ok {
		step.UseSpark = method.SparkTransferFeeSats != nil && f.preferSpark()
	}
	return step
}

func sendOptions(step StepConfirm) (domain.SendOptions, error) {
	switch step.Prepared.Method.(type) {
	case domain.BitcoinSendMethod:
		if step.Speed == nil {
			return nil, fmt.Errorf("no confirmation speed selected")
		}
		return domain.BitcoinSendOptions{Speed: *step.Speed}, nil
	case domain.Bolt11SendMethod:
		return domain.Bolt11SendOptions{UseSpark: step.UseSpark}, nil
	case domain.SparkSendMethod:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown send method")
}
