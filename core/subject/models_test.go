package subject_test

import (
	"context"
	"testing"

	"github.com/tutorlink/backend/core/subject"
	inmemdb "github.com/tutorlink/backend/storage/document/inmem"
)

func TestSeed(t *testing.T) {
	db := inmemdb.NewDB()
	repo := inmemdb.NewSubjectRepository(db)
	ctx := context.Background()

	if err := subject.Seed(ctx, repo); err != nil {
		t.Fatalf("Seed(): %v", err)
	}
	for _, want := range subject.DefaultSubjects {
		got, err := repo.GetSubjectByID(ctx, want.ID)
		if err != nil {
			t.Errorf("GetSubjectByID(%s): %v", want.ID, err)
			continue
		}
		if got.Name != want.Name {
			t.Errorf("subject %s name = %q, want %q", want.ID, got.Name, want.Name)
		}
	}

	// seeding again must not duplicate or overwrite
	if err := subject.Seed(ctx, repo); err != nil {
		t.Fatalf("Seed(again): %v", err)
	}
	ch, err := repo.WatchSubjects(ctx)
	if err != nil {
		t.Fatalf("WatchSubjects(): %v", err)
	}
	if snap := <-ch; len(snap) != len(subject.DefaultSubjects) {
		t.Errorf("catalogue has %d subjects, want %d", len(snap), len(subject.DefaultSubjects))
	}
}
