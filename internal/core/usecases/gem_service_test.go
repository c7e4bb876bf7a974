package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmerino/hiddengems/internal/core/domain"
	"github.com/jmerino/hiddengems/internal/core/usecases"
)

type mockRepo struct {
	loadAllFn    func(ctx context.Context) ([]domain.Gem, error)
	replaceAllFn func(ctx context.Context, gems []domain.Gem) error
}

func (m *mockRepo) LoadAll(ctx context.Context) ([]domain.Gem, error) {
	return m.loadAllFn(ctx)
}

func (m *mockRepo) ReplaceAll(ctx context.Context, gems []domain.Gem) error {
	return m.replaceAllFn(ctx, gems)
}

type mockPublisher struct {
	added   []domain.Gem
	updated []domain.Gem
	removed []domain.Gem
	err     error
}

func (m *mockPublisher) PublishGemAdded(_ context.Context, gem domain.Gem) error {
	m.added = append(m.added, gem)
	return m.err
}

func (m *mockPublisher) PublishGemUpdated(_ context.Context, gem domain.Gem) error {
	m.updated = append(m.updated, gem)
	return m.err
}

func (m *mockPublisher) PublishGemRemoved(_ context.Context, gem domain.Gem) error {
	m.removed = append(m.removed, gem)
	return m.err
}

func (m *mockPublisher) PublishBroadcast(_ context.Context, _ []byte) error {
	return m.err
}

func TestGemService_AddPersistsAndPublishes(t *testing.T) {
	persisted := make(chan []domain.Gem, 1)
	repo := &mockRepo{
		replaceAllFn: func(_ context.Context, gems []domain.Gem) error {
			persisted <- gems
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewGemService(domain.NewCatalog(), repo, pub)

	gem, err := svc.Add(context.Background(), domain.GeoPoint{Lat: 40.73, Lon: -73.93}, domain.GemFields{
		Name:  "Joe's Diner",
		Tags:  []domain.Tag{domain.TagBreakfast},
		Price: domain.PriceLow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gem.ID == 0 {
		t.Error("expected an assigned id")
	}
	if len(pub.added) != 1 || pub.added[0].ID != gem.ID {
		t.Errorf("expected one added event for gem %d, got %+v", gem.ID, pub.added)
	}

	select {
	case gems := <-persisted:
		if len(gems) != 1 || gems[0].ID != gem.ID {
			t.Errorf("expected the full catalog snapshot, got %+v", gems)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("persistence write never happened")
	}
}

func TestGemService_LastPersistedSnapshotIsNewest(t *testing.T) {
	// The add-time snapshot is slow to write; the remove-time snapshot must
	// still be what the store ends up holding, or a deleted gem would
	// resurrect through Load on the next start.
	written := make(chan []domain.Gem, 2)
	repo := &mockRepo{
		replaceAllFn: func(_ context.Context, gems []domain.Gem) error {
			if len(gems) > 0 {
				time.Sleep(50 * time.Millisecond)
			}
			written <- gems
			return nil
		},
	}
	svc := usecases.NewGemService(domain.NewCatalog(), repo, nil)
	ctx := context.Background()

	gem, err := svc.Add(ctx, domain.GeoPoint{}, domain.GemFields{Name: "short lived"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Remove(ctx, gem.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var last []domain.Gem
	select {
	case last = <-written:
	case <-time.After(2 * time.Second):
		t.Fatal("persistence write never happened")
	}
	// The stale add-time snapshot may be dropped entirely; if it does get
	// written, it must land before the remove-time one.
	select {
	case last = <-written:
	case <-time.After(300 * time.Millisecond):
	}

	if len(last) != 0 {
		t.Fatalf("stale snapshot persisted last: store holds %d gems, catalog is empty", len(last))
	}
}

func TestGemService_ValidationFailureTouchesNothing(t *testing.T) {
	repo := &mockRepo{
		replaceAllFn: func(_ context.Context, _ []domain.Gem) error {
			t.Error("persistence must not run for an invalid gem")
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewGemService(domain.NewCatalog(), repo, pub)
	ctx := context.Background()

	if _, err := svc.Add(ctx, domain.GeoPoint{}, domain.GemFields{Name: "  "}); !errors.Is(err, domain.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if len(pub.added) != 0 {
		t.Error("no event may be published for an invalid gem")
	}
	if n := len(svc.List(ctx)); n != 0 {
		t.Errorf("catalog must stay empty, got %d gems", n)
	}
}

func TestGemService_UpdateStaleID(t *testing.T) {
	svc := usecases.NewGemService(domain.NewCatalog(), nil, nil)
	if _, err := svc.Update(context.Background(), 99, domain.GemFields{Name: "x"}); !errors.Is(err, domain.ErrGemNotFound) {
		t.Errorf("expected ErrGemNotFound, got %v", err)
	}
}

func TestGemService_RemovePublishes(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewGemService(domain.NewCatalog(), nil, pub)
	ctx := context.Background()

	gem, err := svc.Add(ctx, domain.GeoPoint{}, domain.GemFields{Name: "doomed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Remove(ctx, gem.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.removed) != 1 || pub.removed[0].ID != gem.ID {
		t.Errorf("expected one removed event, got %+v", pub.removed)
	}
	if _, err := svc.Remove(ctx, gem.ID); !errors.Is(err, domain.ErrGemNotFound) {
		t.Errorf("expected ErrGemNotFound for a stale id, got %v", err)
	}
}

func TestGemService_PublishErrorDoesNotFailTheWrite(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	svc := usecases.NewGemService(domain.NewCatalog(), nil, pub)
	ctx := context.Background()

	gem, err := svc.Add(ctx, domain.GeoPoint{}, domain.GemFields{Name: "kept"})
	if err != nil {
		t.Fatalf("a publish failure must not fail the add: %v", err)
	}
	if _, err := svc.Get(ctx, gem.ID); err != nil {
		t.Errorf("gem must be in the catalog despite the publish error: %v", err)
	}
}

func TestGemService_LoadRestoresCatalog(t *testing.T) {
	repo := &mockRepo{
		loadAllFn: func(_ context.Context) ([]domain.Gem, error) {
			return []domain.Gem{
				{ID: 2, Name: "restored"},
				{ID: 5, Name: "also restored"},
			}, nil
		},
		replaceAllFn: func(_ context.Context, _ []domain.Gem) error { return nil },
	}
	svc := usecases.NewGemService(domain.NewCatalog(), repo, nil)
	ctx := context.Background()

	if err := svc.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(svc.List(ctx)); n != 2 {
		t.Fatalf("expected 2 restored gems, got %d", n)
	}

	gem, err := svc.Add(ctx, domain.GeoPoint{}, domain.GemFields{Name: "new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gem.ID <= 5 {
		t.Errorf("ids must continue above the restored maximum, got %d", gem.ID)
	}
}

func TestGemService_LoadError(t *testing.T) {
	repo := &mockRepo{
		loadAllFn: func(_ context.Context) ([]domain.Gem, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := usecases.NewGemService(domain.NewCatalog(), repo, nil)
	if err := svc.Load(context.Background()); err == nil {
		t.Error("a failed load must surface the error")
	}
}
