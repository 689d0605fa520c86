package order

import (
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/errs"
	"radiology/internal/pkg/guard"
)

// Domain errors for order lifecycle transitions. Each is returned wrapped in an
// errs.ValueIsInvalidError, so callers may test either the class or the rule.
var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder or RestoreOrder constructors.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	ErrOrderIsAlreadyPlaced       = errors.New("order is already placed")
	ErrOrderIsNotPlaced           = errors.New("order is not placed")
	ErrOrderIsAlreadyVoided       = errors.New("order is already voided")
	ErrOrderIsNotVoided           = errors.New("order is not voided")
	ErrOrderIsAlreadyDiscontinued = errors.New("order is already discontinued")
	ErrOrderIsNotDiscontinued     = errors.New("order is not discontinued")
	ErrOrderIsVoided              = errors.New("order is voided")
	ErrOrderIsInProgress          = errors.New("order is in progress")
	ErrOrderIsCompleted           = errors.New("order is completed")
	ErrOrderHasCompletedReport    = errors.New("order has a completed report")

	// ErrReasonIsRequired is returned when voiding or discontinuing without a reason.
	ErrReasonIsRequired = errs.NewValueIsRequiredError("reason")
)

// accessionNumberLength is the DICOM SH limit for an accession number.
const accessionNumberLength = 16

// Order is a clinical request for an imaging procedure. It is the aggregate root
// of the order/study pair: the study is loaded and saved with it and cannot
// outlive it.
//
// Order follows these invariants:
//   - A draft order has no identity; Place assigns identity, encounter and accession number
//   - Lifecycle flags change only through Void, Unvoid, Discontinue and Undiscontinue
//   - Each flag keeps the mark of the transition that set it
//   - Orders are never deleted
type Order struct {
	// id is the unique identifier, zero until the order is placed
	id kernel.UUID

	// encounterID is the encounter created for the order at placement
	encounterID kernel.UUID

	// patientID references the patient the procedure is ordered for
	patientID kernel.UUID

	// orderer is the provider who requested the procedure
	orderer kernel.Actor

	// accessionNumber identifies the order on the modality worklist
	accessionNumber string

	// instructions is free text passed to the performing technologist
	instructions string

	// orderDate is when the order was placed
	orderDate time.Time

	// voided is set while the order is voided
	voided *Mark

	// discontinued is set while the order is discontinued
	discontinued *Mark

	// undiscontinued is the mark of the latest Undiscontinue; it survives a
	// later Discontinue
	undiscontinued *Mark

	guard guard.ConstructorGuard
}

// NewOrder creates a draft order for patientID requested by orderer.
//
// Example:
//
//	o, err := order.NewOrder(patientID, orderer, "rule out fracture")
//	if err != nil {
//	    // Handle validation error
//	}
func NewOrder(patientID kernel.UUID, orderer kernel.Actor, instructions string) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setPatientID(patientID),
		o.setOrderer(orderer),
	); err != nil {
		return nil, err
	}
	o.instructions = strings.TrimSpace(instructions)

	return o, nil
}

// RestoreOrder reconstructs a placed order from persistent storage. The voided
// and discontinued marks are nil when the corresponding flag is not set, and
// undiscontinued is nil for an order that was never undiscontinued.
func RestoreOrder(
	id kernel.UUID,
	encounterID kernel.UUID,
	patientID kernel.UUID,
	orderer kernel.Actor,
	accessionNumber string,
	instructions string,
	orderDate time.Time,
	voided *Mark,
	discontinued *Mark,
	undiscontinued *Mark,
) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		encounterID.Validate(),
		o.setPatientID(patientID),
		o.setOrderer(orderer),
	); err != nil {
		return nil, err
	}

	o.encounterID = encounterID
	o.accessionNumber = accessionNumber
	o.instructions = instructions
	o.orderDate = orderDate
	o.voided = copyMark(voided)
	o.discontinued = copyMark(discontinued)
	o.undiscontinued = copyMark(undiscontinued)

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier, zero for a draft.
func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) EncounterID() kernel.UUID {
	return o.encounterID
}

func (o *Order) PatientID() kernel.UUID {
	return o.patientID
}

func (o *Order) Orderer() kernel.Actor {
	return o.orderer
}

func (o *Order) AccessionNumber() string {
	return o.accessionNumber
}

func (o *Order) Instructions() string {
	return o.instructions
}

func (o *Order) OrderDate() time.Time {
	return o.orderDate
}

// Voided returns the void mark, or nil if the order is not voided.
func (o *Order) Voided() *Mark {
	return copyMark(o.voided)
}

// Discontinued returns the discontinue mark, or nil if the order is not discontinued.
func (o *Order) Discontinued() *Mark {
	return copyMark(o.discontinued)
}

// Undiscontinued returns the mark of the latest Undiscontinue, or nil if the
// order was never undiscontinued.
func (o *Order) Undiscontinued() *Mark {
	return copyMark(o.undiscontinued)
}

func (o *Order) IsNew() bool {
	return o.id.IsZero()
}

func (o *Order) IsVoided() bool {
	return o.voided != nil
}

func (o *Order) IsDiscontinued() bool {
	return o.discontinued != nil
}

// Status derives the lifecycle status from the order's flags.
func (o *Order) Status() Status {
	switch {
	case o.IsNew():
		return Draft
	case o.IsVoided():
		return Voided
	case o.IsDiscontinued():
		return Discontinued
	default:
		return Active
	}
}

// ValidatePlace checks that the order can be placed.
func (o *Order) ValidatePlace() error {
	if !o.IsNew() {
		return invalid(ErrOrderIsAlreadyPlaced)
	}
	return nil
}

// Place assigns identity and encounter to a draft order and stamps the order
// date. The accession number is derived from the identity.
func (o *Order) Place(id kernel.UUID, encounterID kernel.UUID, at time.Time) error {
	if err := o.ValidatePlace(); err != nil {
		return err
	}
	if err := errors.Join(id.Validate(), encounterID.Validate()); err != nil {
		return err
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("order date")
	}

	o.id = id
	o.encounterID = encounterID
	o.orderDate = at
	o.accessionNumber = accessionNumberFor(id)
	return nil
}

// ValidateVoid checks the order-level preconditions of Void.
func (o *Order) ValidateVoid() error {
	if o.IsNew() {
		return invalid(ErrOrderIsNotPlaced)
	}
	if o.IsVoided() {
		return invalid(ErrOrderIsAlreadyVoided)
	}
	return nil
}

// Void marks the order as entered in error. A reason is required.
func (o *Order) Void(actor kernel.Actor, reason string, at time.Time) error {
	if err := o.ValidateVoid(); err != nil {
		return err
	}
	mark, err := newReasonedMark(actor, reason, at)
	if err != nil {
		return err
	}

	o.voided = &mark
	return nil
}

// ValidateUnvoid checks the order-level preconditions of Unvoid.
func (o *Order) ValidateUnvoid() error {
	if o.IsNew() {
		return invalid(ErrOrderIsNotPlaced)
	}
	if !o.IsVoided() {
		return invalid(ErrOrderIsNotVoided)
	}
	return nil
}

// Unvoid clears the void flag. The actor is required even though no mark is kept.
func (o *Order) Unvoid(actor kernel.Actor) error {
	if err := o.ValidateUnvoid(); err != nil {
		return err
	}
	if err := actor.Validate(); err != nil {
		return kernel.ErrActorIsRequired
	}

	o.voided = nil
	return nil
}

// ValidateDiscontinue checks the order-level preconditions of Discontinue. The
// study and report preconditions live in services.DiscontinuePolicy.
func (o *Order) ValidateDiscontinue() error {
	if o.IsNew() {
		return invalid(ErrOrderIsNotPlaced)
	}
	if o.IsDiscontinued() {
		return invalid(ErrOrderIsAlreadyDiscontinued)
	}
	if o.IsVoided() {
		return invalid(ErrOrderIsVoided)
	}
	return nil
}

// Discontinue stops the order. A reason is required.
func (o *Order) Discontinue(actor kernel.Actor, reason string, at time.Time) error {
	if err := o.ValidateDiscontinue(); err != nil {
		return err
	}
	mark, err := newReasonedMark(actor, reason, at)
	if err != nil {
		return err
	}

	o.discontinued = &mark
	return nil
}

// ValidateUndiscontinue checks the order-level preconditions of Undiscontinue.
func (o *Order) ValidateUndiscontinue() error {
	if o.IsNew() {
		return invalid(ErrOrderIsNotPlaced)
	}
	if !o.IsDiscontinued() {
		return invalid(ErrOrderIsNotDiscontinued)
	}
	if o.IsVoided() {
		return invalid(ErrOrderIsVoided)
	}
	return nil
}

// Undiscontinue reactivates a discontinued order and records who did it and
// when. The reason is optional.
func (o *Order) Undiscontinue(actor kernel.Actor, reason string, at time.Time) error {
	if err := o.ValidateUndiscontinue(); err != nil {
		return err
	}
	mark, err := NewMark(actor, reason, at)
	if err != nil {
		return err
	}

	o.discontinued = nil
	o.undiscontinued = &mark
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setPatientID(patientID kernel.UUID) error {
	if err := patientID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("patient", err)
	}
	o.patientID = patientID
	return nil
}

func (o *Order) setOrderer(orderer kernel.Actor) error {
	if err := orderer.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderer", err)
	}
	o.orderer = orderer
	return nil
}

func newReasonedMark(actor kernel.Actor, reason string, at time.Time) (Mark, error) {
	mark, err := NewMark(actor, reason, at)
	if err != nil {
		return Mark{}, err
	}
	if mark.Reason() == "" {
		return Mark{}, ErrReasonIsRequired
	}
	return mark, nil
}

func invalid(rule error) error {
	return errs.NewValueIsInvalidErrorWithCause("order", rule)
}

func accessionNumberFor(id kernel.UUID) string {
	b := id.Bytes()
	return strings.ToUpper(hex.EncodeToString(b[:accessionNumberLength/2]))
}

func copyMark(m *Mark) *Mark {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
