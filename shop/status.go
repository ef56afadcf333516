package shop

// ChairStatus is a point-in-time view of one service chair.
type ChairStatus struct {
	Customer  int  `json:"customer"` // 0 when the chair is empty
	InService bool `json:"in_service"`
}

// Status is a consistent snapshot of the monitor's observable state, taken
// under the lock. It backs the status API and the end-of-run summary.
type Status struct {
	Barbers      int           `json:"barbers"`
	WaitingSeats int           `json:"waiting_seats"`
	Waiting      int           `json:"waiting"`
	IdleBarbers  int           `json:"idle_barbers"`
	Drops        int           `json:"drops"`
	Chairs       []ChairStatus `json:"chairs"`
}

// Status returns a snapshot of the shop. It never blocks beyond the lock
// acquisition itself.
func (s *Shop) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Barbers:      len(s.chairs),
		WaitingSeats: s.waitingSeats,
		Waiting:      s.waiting,
		IdleBarbers:  s.idleBarbers,
		Drops:        s.drops,
		Chairs:       make([]ChairStatus, len(s.chairs)),
	}
	for i, c := range s.chairs {
		st.Chairs[i] = ChairStatus{Customer: c.customer, InService: c.inService}
	}
	return st
}
