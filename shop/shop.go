// Package shop implements the barbershop monitor: a single lock-protected
// object coordinating barber and customer goroutines around a fixed set of
// service chairs and waiting-room seats.
//
// Each barber goroutine owns one chair index for its whole lifetime and
// alternates AwaitCustomer -> (haircut, outside the lock) -> FinishCustomer.
// Each customer goroutine calls Enter once and, if it got a chair, Leave.
// The caller is responsible for ordering these calls correctly; the monitor
// performs no defensive checks.
package shop

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Defaults used when the constructor is handed invalid sizes.
const (
	DefaultBarbers      = 1
	DefaultWaitingSeats = 3
)

// NoChair is returned by Enter when neither a service chair nor a waiting
// seat could be had. The customer has left the shop.
const NoChair = -1

// chair holds one service chair's state together with the three conditions
// used during a service: the barber sleeps on seated until a customer sits
// down, the customer waits on served for the haircut to finish, and the
// barber waits on paid for the payment that closes the hand-off.
type chair struct {
	customer  int  // occupant customer ID, 0 means empty
	inService bool // true from seating until the barber finishes the haircut
	moneyPaid bool // payment handshake flag, reset at the start of each hand-off

	seated *sync.Cond
	served *sync.Cond
	paid   *sync.Cond
}

// Shop is the monitor. All fields are guarded by mu; every exported method
// takes the lock on entry and holds it for its whole duration except while
// suspended in a condition wait.
type Shop struct {
	mu    sync.Mutex
	freed *sync.Cond // signaled whenever a service chair goes back to empty

	waitingSeats int
	chairs       []*chair

	waiting int // customers currently holding a waiting seat

	// Advisory count of barbers believed idle. It is incremented both when a
	// barber goes to sleep and when one finishes a service, so it can drift
	// from the true number of sleeping barbers. Nothing decides on it; it is
	// surfaced in Status for diagnostics only.
	idleBarbers int

	drops int // customers turned away, monotonically non-decreasing

	log logrus.FieldLogger
}

// New creates a shop with the given number of barbers (= service chairs) and
// waiting-room seats. Invalid sizes fall back to the defaults. A nil logger
// falls back to the logrus standard logger.
func New(numBarbers, numSeats int, log logrus.FieldLogger) *Shop {
	if numBarbers <= 0 {
		numBarbers = DefaultBarbers
	}
	if numSeats < 0 {
		numSeats = DefaultWaitingSeats
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Shop{
		waitingSeats: numSeats,
		chairs:       make([]*chair, numBarbers),
		log:          log,
	}
	s.freed = sync.NewCond(&s.mu)
	for i := range s.chairs {
		s.chairs[i] = &chair{
			seated: sync.NewCond(&s.mu),
			served: sync.NewCond(&s.mu),
			paid:   sync.NewCond(&s.mu),
		}
	}
	return s
}

// Enter admits a customer. It returns the index of the service chair the
// customer was seated in, or NoChair if the customer was dropped because
// neither a chair nor a waiting seat was free.
//
// A customer who takes a waiting seat sleeps until a chair is freed and then
// rescans exactly once. If that single retry finds nothing (another customer
// reached the freed chair first) the customer is dropped rather than
// re-queued.
func (s *Shop) Enter(custID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.waitingSeats == 0 {
		// No waiting room at all, only the service chairs.
		chairID := s.assignChair(custID)
		if chairID == NoChair {
			s.drop(custID, "no available service chairs")
			return NoChair
		}
		s.seat(custID, chairID)
		return chairID
	}

	if s.waiting == s.waitingSeats {
		s.drop(custID, "no available waiting chairs")
		return NoChair
	}

	chairID := s.assignChair(custID)
	if chairID == NoChair {
		s.waiting++
		s.customerLog(custID).Infof("takes a waiting chair, %d seat(s) still free", s.waitingSeats-s.waiting)

		// One sleep episode, one retry. See the doc comment.
		s.freed.Wait()

		chairID = s.assignChair(custID)
		if chairID == NoChair {
			s.waiting--
			s.drop(custID, "no available service chairs")
			return NoChair
		}
		s.waiting--
	}

	s.seat(custID, chairID)
	return chairID
}

// Leave completes a customer's visit: it waits for the barber at chairID to
// finish the haircut, then pays and wakes the barber. chairID must be the
// value returned by this customer's Enter call.
func (s *Shop) Leave(custID, chairID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.chairs[chairID]
	s.customerLog(custID).WithField("chair", chairID).Info("waits for the hair-cut to finish")
	for c.inService {
		c.served.Wait()
	}

	c.moneyPaid = true
	c.paid.Signal()
	s.customerLog(custID).WithField("chair", chairID).Info("pays and says good-bye")
}

// AwaitCustomer blocks the barber at chairID until a customer occupies the
// chair and returns that customer's ID. If the shop is empty the barber
// first goes to sleep for a single wait episode; after that it loop-waits,
// since a wake may find the chair still empty (the customer sat down at
// another barber's chair, or the wake was spurious).
func (s *Shop) AwaitCustomer(chairID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.chairs[chairID]
	if s.waiting == 0 && c.customer == 0 {
		s.barberLog(chairID).Info("sleeps because of no customers")
		s.idleBarbers++
		c.seated.Wait()
	}
	for c.customer == 0 {
		c.seated.Wait()
	}

	s.barberLog(chairID).WithField("customer", c.customer).Info("starts a hair-cut service")
	return c.customer
}

// FinishCustomer ends the haircut at chairID, collects the customer's
// payment and releases the chair, waking one waiting customer if there is
// one. It returns the ID of the customer that was served.
func (s *Shop) FinishCustomer(chairID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.chairs[chairID]
	custID := c.customer

	c.inService = false
	c.moneyPaid = false
	s.barberLog(chairID).WithField("customer", custID).Info("is done with the hair-cut service")
	c.served.Signal()

	for !c.moneyPaid {
		c.paid.Wait()
	}

	c.customer = 0
	s.idleBarbers++
	s.barberLog(chairID).Info("calls in another customer")
	s.freed.Signal()
	return custID
}

// Drops reports how many customers have been turned away so far.
func (s *Shop) Drops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drops
}

// assignChair seats custID in the lowest-indexed empty chair and returns its
// index, or NoChair without side effects if every chair is taken. The linear
// scan is the only admission order: lowest free chair wins.
func (s *Shop) assignChair(custID int) int {
	for chairID, c := range s.chairs {
		if c.customer == 0 {
			c.customer = custID
			s.idleBarbers--
			return chairID
		}
	}
	return NoChair
}

// seat marks the assigned chair as in service and wakes its barber. The wake
// is harmless if the barber was not actually sleeping.
func (s *Shop) seat(custID, chairID int) {
	c := s.chairs[chairID]
	c.inService = true
	s.customerLog(custID).WithField("chair", chairID).Infof("moves to a service chair, %d waiting seat(s) still free", s.waitingSeats-s.waiting)
	c.seated.Signal()
}

func (s *Shop) drop(custID int, reason string) {
	s.drops++
	s.customerLog(custID).Infof("leaves the shop because of %s", reason)
}

func (s *Shop) customerLog(custID int) logrus.FieldLogger {
	return s.log.WithField("customer", custID)
}

func (s *Shop) barberLog(chairID int) logrus.FieldLogger {
	return s.log.WithField("barber", chairID)
}
