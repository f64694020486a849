package pgstore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/helpdesk/internal/postgres"
	"github.com/linnemanlabs/helpdesk/internal/ticket"
	"github.com/linnemanlabs/helpdesk/internal/ticket/pgstore"
)

func openStore(t *testing.T) *pgstore.Store {
	t.Helper()
	dsn := os.Getenv("HELPDESK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("HELPDESK_TEST_DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("postgres.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)
	s, err := pgstore.New(ctx, pool)
	if err != nil {
		t.Fatalf("pgstore.New: %v", err)
	}
	return s
}

func newTestTicket() *ticket.Ticket {
	now := time.Now().Truncate(time.Microsecond).UTC()
	return &ticket.Ticket{
		ID:            ulid.Make().String(),
		Title:         "checkout page 500s",
		Description:   "clicking pay returns an internal error",
		Status:        ticket.StatusCreated,
		Priority:      ticket.PriorityMedium,
		RelatedSkills: []string{"go", "payments"},
		CreatedBy:     "u-test",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCreateAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	want := newTestTicket()
	if err := s.Create(ctx, want); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, ok, err := s.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get returned ok=false, want true")
	}

	assertEqual(t, "Title", want.Title, got.Title)
	assertEqual(t, "Description", want.Description, got.Description)
	assertEqual(t, "Status", string(want.Status), string(got.Status))
	assertEqual(t, "Priority", string(want.Priority), string(got.Priority))
	assertEqual(t, "CreatedBy", want.CreatedBy, got.CreatedBy)
	if len(got.RelatedSkills) != 2 || got.RelatedSkills[0] != "go" || got.RelatedSkills[1] != "payments" {
		t.Errorf("RelatedSkills mismatch: got %v", got.RelatedSkills)
	}
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)

	_, ok, err := s.Get(context.Background(), "nonexistent-id")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("Get returned ok=true for nonexistent ID")
	}
}

func TestUpdatePartial(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	tk := newTestTicket()
	if err := s.Create(ctx, tk); err != nil {
		t.Fatalf("Create: %v", err)
	}

	st := ticket.StatusSentToModerator
	pr := ticket.PriorityHigh
	notes := "escalate to the payments team"
	assignee := "h-mod-1"
	err := s.Update(ctx, tk.ID, ticket.Update{
		Status:       &st,
		Priority:     &pr,
		HelpfulNotes: &notes,
		AssignedTo:   &assignee,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, ok, err := s.Get(ctx, tk.ID)
	if err != nil || !ok {
		t.Fatalf("Get after update: ok=%v err=%v", ok, err)
	}
	assertEqual(t, "Status", string(st), string(got.Status))
	assertEqual(t, "Priority", string(pr), string(got.Priority))
	assertEqual(t, "HelpfulNotes", notes, got.HelpfulNotes)
	assertEqual(t, "AssignedTo", assignee, got.AssignedTo)
	// untouched fields survive
	assertEqual(t, "Title", tk.Title, got.Title)
	if len(got.RelatedSkills) != 2 {
		t.Errorf("RelatedSkills = %v, want untouched pair", got.RelatedSkills)
	}
}

func TestUpdateMissing(t *testing.T) {
	s := openStore(t)

	st := ticket.StatusAnalyzing
	err := s.Update(context.Background(), "nonexistent-id", ticket.Update{Status: &st})
	if err != ticket.ErrNotFound {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}
}

func TestListByCreator(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	creator := fmt.Sprintf("u-list-%s", ulid.Make())
	for range 2 {
		tk := newTestTicket()
		tk.CreatedBy = creator
		if err := s.Create(ctx, tk); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := s.List(ctx, ticket.ListFilter{CreatedBy: creator})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("List = %d tickets, want 2", len(got))
	}
	for _, tk := range got {
		if tk.CreatedBy != creator {
			t.Errorf("List returned ticket created by %q, want %q", tk.CreatedBy, creator)
		}
	}
}

func assertEqual[T comparable](t *testing.T, field string, want, got T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}
