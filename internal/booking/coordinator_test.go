package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestCoordinator(store *memStore, strict bool) *Coordinator {
	log := zap.NewNop()
	ledger := NewLedger(store, strict, log)
	oracle := NewCapacityOracle(sessionLookup{store}, hallLookup{m: store}, ledger)
	return NewCoordinator(oracle, ledger, log)
}

func TestPurchase_RoundTrip(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(10)
	userID := uuid.New()
	c := newTestCoordinator(store, false)

	ticket, err := c.Purchase(context.Background(), PurchaseRequest{SessionID: sessionID, UserID: userID, Seat: "A12"})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	sold := store.sold(sessionID)
	if len(sold) != 1 {
		t.Fatalf("expected 1 ticket stored, got %d", len(sold))
	}
	got := sold[0]
	if got.ID != ticket.ID || got.SessionID != sessionID || got.UserID != userID || got.SeatNumber != "A12" {
		t.Fatalf("stored ticket %+v does not match returned %+v", got, ticket)
	}
	if ticket.PurchaseTime.IsZero() {
		t.Fatalf("purchase time not set")
	}
}

func TestPurchase_SeatStoredVerbatim(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(10)
	c := newTestCoordinator(store, false)
	ctx := context.Background()

	lower, err := c.Purchase(ctx, PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "a1"})
	if err != nil {
		t.Fatalf("purchase a1: %v", err)
	}
	if lower.SeatNumber != "a1" {
		t.Fatalf("expected seat %q, got %q", "a1", lower.SeatNumber)
	}

	upper, err := c.Purchase(ctx, PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "A1"})
	if err != nil {
		t.Fatalf("A1 is a distinct designator, got %v", err)
	}
	if upper.SeatNumber != "A1" {
		t.Fatalf("expected seat %q, got %q", "A1", upper.SeatNumber)
	}

	padded, err := c.Purchase(ctx, PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: " a1 "})
	if err != nil {
		t.Fatalf("purchase padded seat: %v", err)
	}
	if padded.SeatNumber != " a1 " {
		t.Fatalf("expected seat %q, got %q", " a1 ", padded.SeatNumber)
	}

	_, err = c.Purchase(ctx, PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "a1"})
	if !errors.Is(err, ErrSeatTaken) {
		t.Fatalf("expected ErrSeatTaken for the same label, got %v", err)
	}

	seats := map[string]bool{}
	for _, ticket := range store.sold(sessionID) {
		seats[ticket.SeatNumber] = true
	}
	if len(seats) != 3 || !seats["a1"] || !seats["A1"] || !seats[" a1 "] {
		t.Fatalf("unexpected stored seats %v", seats)
	}
}

func TestPurchase_EmptySeat(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(10)
	c := newTestCoordinator(store, false)

	_, err := c.Purchase(context.Background(), PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "   "})
	if !errors.Is(err, ErrInvalidSeat) {
		t.Fatalf("expected ErrInvalidSeat, got %v", err)
	}
	if n := len(store.sold(sessionID)); n != 0 {
		t.Fatalf("expected no tickets, got %d", n)
	}
}

func TestPurchase_UnknownSession(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, false)
	missing := uuid.New()

	ticket, err := c.Purchase(context.Background(), PurchaseRequest{SessionID: missing, UserID: uuid.New(), Seat: "A1"})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if ticket != nil {
		t.Fatalf("expected no ticket, got %+v", ticket)
	}
	if n := len(store.sold(missing)); n != 0 {
		t.Fatalf("expected no tickets, got %d", n)
	}
}

func TestPurchase_HallMissing(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(5)
	store.dropHalls()
	c := newTestCoordinator(store, false)

	_, err := c.Purchase(context.Background(), PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "A1"})
	if !errors.Is(err, ErrHallNotFound) {
		t.Fatalf("expected ErrHallNotFound, got %v", err)
	}
}

func TestPurchase_CapacityTwoSequential(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(2)
	c := newTestCoordinator(store, false)
	ctx := context.Background()

	for _, seat := range []string{"A1", "A2"} {
		if _, err := c.Purchase(ctx, PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: seat}); err != nil {
			t.Fatalf("purchase %s: %v", seat, err)
		}
	}

	_, err := c.Purchase(ctx, PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "A3"})
	if !errors.Is(err, ErrSessionFull) {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}
	if n := len(store.sold(sessionID)); n != 2 {
		t.Fatalf("sequential purchases must not exceed capacity, sold %d", n)
	}
}

func TestPurchase_RejectionsLeaveCountUnchanged(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(1)
	c := newTestCoordinator(store, false)
	ctx := context.Background()

	if _, err := c.Purchase(ctx, PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "A1"}); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	// seat taken is detected by the ledger when capacity allows it
	bigger := store.addSession(3)
	if _, err := c.Purchase(ctx, PurchaseRequest{SessionID: bigger, UserID: uuid.New(), Seat: "B1"}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := c.Purchase(ctx, PurchaseRequest{SessionID: bigger, UserID: uuid.New(), Seat: "B1"}); !errors.Is(err, ErrSeatTaken) {
		t.Fatalf("expected ErrSeatTaken, got %v", err)
	}
	if n := len(store.sold(bigger)); n != 1 {
		t.Fatalf("ErrSeatTaken changed the count to %d", n)
	}

	if _, err := c.Purchase(ctx, PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "A2"}); !errors.Is(err, ErrSessionFull) {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}
	if n := len(store.sold(sessionID)); n != 1 {
		t.Fatalf("ErrSessionFull changed the count to %d", n)
	}
}

func TestPurchase_ConcurrentSameSeat(t *testing.T) {
	for _, strict := range []bool{false, true} {
		t.Run(fmt.Sprintf("strict=%v", strict), func(t *testing.T) {
			store := newMemStore()
			sessionID := store.addSession(100)
			c := newTestCoordinator(store, strict)

			const buyers = 32
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				taken     int
			)
			for i := 0; i < buyers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := c.Purchase(context.Background(), PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "C7"})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case errors.Is(err, ErrSeatTaken):
						taken++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			if successes != 1 || taken != buyers-1 {
				t.Fatalf("expected 1 success and %d seat taken, got %d and %d", buyers-1, successes, taken)
			}
			if n := len(store.sold(sessionID)); n != 1 {
				t.Fatalf("expected 1 ticket, got %d", n)
			}
		})
	}
}

func TestPurchase_CapacityOneTwoBuyersSameSeat(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(1)
	c := newTestCoordinator(store, false)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Purchase(context.Background(), PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "A1"})
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSeatTaken), errors.Is(err, ErrSessionFull):
			// the loser either lost the insert race or already saw the hall full
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || rejected != 1 {
		t.Fatalf("expected one ticket and one rejection, got %d and %d", ok, rejected)
	}
	if n := len(store.sold(sessionID)); n != 1 {
		t.Fatalf("expected exactly one ticket, got %d", n)
	}
}

func TestPurchase_ConcurrentDistinctSeatsSoftCap(t *testing.T) {
	const capacity, buyers = 5, 40

	store := newMemStore()
	sessionID := store.addSession(capacity)
	c := newTestCoordinator(store, false)

	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Purchase(context.Background(), PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: fmt.Sprintf("R%d", i)})
			if err != nil && !errors.Is(err, ErrSessionFull) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	sold := len(store.sold(sessionID))
	overlap := store.overlap()
	if sold < capacity {
		t.Fatalf("sold %d, expected at least capacity %d", sold, capacity)
	}
	if sold > capacity+overlap {
		t.Fatalf("sold %d exceeds capacity %d plus overlap %d", sold, capacity, overlap)
	}
}

func TestPurchase_StaleCapacityReadOversellsByOverlap(t *testing.T) {
	const capacity = 1

	store := newMemStore()
	sessionID := store.addSession(capacity)
	c := newTestCoordinator(store, false)

	// The second buyer completes between the first buyer's capacity check
	// and its insert.
	var raced bool
	var rivalErr error
	store.beforeCreate = func() {
		if raced {
			return
		}
		raced = true
		_, rivalErr = c.Purchase(context.Background(), PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "B1"})
	}

	if _, err := c.Purchase(context.Background(), PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "A1"}); err != nil {
		t.Fatalf("first buyer: %v", err)
	}
	if rivalErr != nil {
		t.Fatalf("second buyer: %v", rivalErr)
	}

	sold, overlap := len(store.sold(sessionID)), store.overlap()
	if overlap != 1 {
		t.Fatalf("expected one raced reserve, got %d", overlap)
	}
	if sold != capacity+overlap {
		t.Fatalf("sold %d, want capacity %d plus overlap %d", sold, capacity, overlap)
	}

	store.beforeCreate = nil
	_, err := c.Purchase(context.Background(), PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "C1"})
	if !errors.Is(err, ErrSessionFull) {
		t.Fatalf("expected ErrSessionFull once the count catches up, got %v", err)
	}
}

func TestPurchase_ConcurrentDistinctSeatsStrictCap(t *testing.T) {
	const capacity, buyers = 5, 40

	store := newMemStore()
	sessionID := store.addSession(capacity)
	c := newTestCoordinator(store, true)

	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Purchase(context.Background(), PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: fmt.Sprintf("R%d", i)})
			if err != nil && !errors.Is(err, ErrSessionFull) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if sold := len(store.sold(sessionID)); sold != capacity {
		t.Fatalf("strict mode sold %d, capacity %d", sold, capacity)
	}
}

func TestPurchase_SessionDeletedMidFlight(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(10)
	log := zap.NewNop()
	ledger := NewLedger(store, false, log)

	store.removeSession(sessionID)

	_, err := ledger.Reserve(context.Background(), sessionID, uuid.New(), "A1")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestPurchase_StorageFailure(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(10)
	store.countErr = errConnReset
	c := newTestCoordinator(store, false)

	_, err := c.Purchase(context.Background(), PurchaseRequest{SessionID: sessionID, UserID: uuid.New(), Seat: "A1"})
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}
	if !errors.Is(err, errConnReset) {
		t.Fatalf("expected the cause to stay reachable, got %v", err)
	}
	if Code(err) != "STORAGE_FAILURE" {
		t.Fatalf("unexpected code %q", Code(err))
	}
}

func TestPurchase_CancelledContextWritesNothing(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(10)
	ledger := NewLedger(store, false, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ledger.Reserve(ctx, sessionID, uuid.New(), "A1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	if n := len(store.sold(sessionID)); n != 0 {
		t.Fatalf("expected no tickets, got %d", n)
	}
}
