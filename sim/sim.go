// Package sim drives a barbershop simulation: one goroutine per barber and
// one per customer, all funneling through the shop monitor.
package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/KoroshM/Multithreading-Barbershop-Exercise/shop"
)

// Params describes one simulation run. The caller validates them; the
// monitor itself falls back to its defaults on nonsense sizes.
type Params struct {
	Barbers       int
	WaitingSeats  int
	Customers     int
	ServiceTime   time.Duration
	ArrivalJitter time.Duration // upper bound on the random pause between customer arrivals
}

// Result is the outcome of a run as observed from the customer side.
type Result struct {
	Served        int
	Dropped       int
	ServedByChair []int
	Elapsed       time.Duration
}

// Recorder receives customer outcomes as they happen. A nil Recorder is
// valid and records nothing. Implementations must be safe for concurrent
// use; the ledger's session type satisfies this interface.
type Recorder interface {
	Assigned(customer, chair int)
	Dropped(customer int)
	Served(customer, chair int)
}

// Run starts the barbers, lets the customers through the shop and returns
// once every customer has an outcome. Customer IDs are 1-based.
//
// Barber goroutines never return on their own; once the last customer is
// done they stay parked in AwaitCustomer and are abandoned with the process,
// which is the same end the original driver gave its barber threads.
func Run(s *shop.Shop, p Params, rec Recorder) Result {
	start := time.Now()

	for i := 0; i < p.Barbers; i++ {
		go func(chairID int) {
			for {
				s.AwaitCustomer(chairID)
				time.Sleep(p.ServiceTime)
				s.FinishCustomer(chairID)
			}
		}(i)
	}

	res := Result{ServedByChair: make([]int, p.Barbers)}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for id := 1; id <= p.Customers; id++ {
		if p.ArrivalJitter > 0 {
			time.Sleep(time.Duration(rand.Int63n(int64(p.ArrivalJitter))))
		}
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			chairID := s.Enter(id)
			if chairID == shop.NoChair {
				mu.Lock()
				res.Dropped++
				mu.Unlock()
				if rec != nil {
					rec.Dropped(id)
				}
				return
			}
			if rec != nil {
				rec.Assigned(id, chairID)
			}

			s.Leave(id, chairID)

			mu.Lock()
			res.Served++
			res.ServedByChair[chairID]++
			mu.Unlock()
			if rec != nil {
				rec.Served(id, chairID)
			}
		}(id)
	}

	wg.Wait()
	res.Elapsed = time.Since(start)
	return res
}
