package service_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"corkboard/internal/board"
	"corkboard/internal/domain"
	"corkboard/internal/interaction"
	"corkboard/internal/render"
	"corkboard/internal/service"
	"corkboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// BoardService tests
// Backed by MemoryKV so every flush can be read back.
// ─────────────────────────────────────────────────────────────

type fixture struct {
	kv      *storage.MemoryKV
	repo    *storage.BoardRepository
	emitter *service.MockEmitter
	svc     *service.BoardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := storage.NewMemoryKV()
	repo := storage.NewBoardRepository(kv, "")
	emitter := &service.MockEmitter{}
	store := board.New(board.Options{Rand: rand.New(rand.NewSource(42))})
	svc := service.NewBoardService(store, repo, emitter, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return &fixture{kv: kv, repo: repo, emitter: emitter, svc: svc}
}

func (f *fixture) persisted(t *testing.T) domain.BoardState {
	t.Helper()
	state, err := f.repo.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	return state
}

func TestBoardService_FlushesEveryMutation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	note, err := f.svc.AddNote(ctx, domain.Point{X: 10, Y: 10}, "")
	if err != nil {
		t.Fatal(err)
	}
	if note.Content != "New note..." {
		t.Errorf("default note content = %q", note.Content)
	}
	photo, err := f.svc.AddPhoto(ctx, domain.Point{X: 300}, "https://example.com/suspect.jpg", "<i>who?</i>")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Connect(ctx, note.ID, photo.ID, domain.ConnectionCurved); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.RotateItem(ctx, note.ID, 370); err != nil {
		t.Fatal(err)
	}

	got := f.persisted(t)
	if len(got.Items) != 2 || len(got.Connections) != 1 {
		t.Fatalf("persisted %d items, %d connections", len(got.Items), len(got.Connections))
	}
	if got.Items[0].Rotation != 370 {
		t.Errorf("persisted rotation = %v, want 370", got.Items[0].Rotation)
	}
	if got.Items[1].Image != "https://example.com/suspect.jpg" {
		t.Errorf("photo image = %q", got.Items[1].Image)
	}
	if n := f.emitter.Count(service.EventBoardChanged); n != 4 {
		t.Errorf("board:changed emitted %d times, want 4", n)
	}
}

func TestBoardService_AddPhotoRejectsBadImage(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.AddPhoto(context.Background(), domain.Point{}, "", ""); err == nil {
		t.Error("expected error for empty image")
	}
	if _, err := f.svc.AddPhoto(context.Background(), domain.Point{}, "/etc/passwd", ""); err == nil {
		t.Error("expected error for a bare path")
	}
}

func TestBoardService_RemoveCascadesAndPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, _ := f.svc.AddNote(ctx, domain.Point{}, "a")
	b, _ := f.svc.AddNote(ctx, domain.Point{}, "b")
	f.svc.Connect(ctx, a.ID, b.ID, domain.ConnectionStraight)
	f.svc.Connect(ctx, a.ID, b.ID, domain.ConnectionStraight)

	removed, err := f.svc.RemoveItem(ctx, b.ID)
	if err != nil || !removed {
		t.Fatalf("remove: %v %v", removed, err)
	}
	got := f.persisted(t)
	if len(got.Items) != 1 || len(got.Connections) != 0 {
		t.Errorf("persisted %d items, %d connections", len(got.Items), len(got.Connections))
	}

	removed, err = f.svc.RemoveItem(ctx, "never-existed")
	if err != nil || removed {
		t.Errorf("missing id should be a silent no-op, got %v %v", removed, err)
	}
}

func TestBoardService_UpdateMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.MoveItem(context.Background(), "ghost", 1, 2)
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestBoardService_ConnectRejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Connect(context.Background(), "a", "b", "wavy"); err == nil {
		t.Error("expected error for unknown connection type")
	}
}

func TestBoardService_ClearRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, _ := f.svc.AddNote(ctx, domain.Point{}, "a")
	f.svc.Connect(ctx, a.ID, a.ID, domain.ConnectionCurved)

	if err := f.svc.Clear(ctx, service.Declined); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if len(f.persisted(t).Items) != 1 {
		t.Fatal("declined clear changed the board")
	}

	var asked string
	confirm := service.ConfirmFunc(func(_ context.Context, action, _ string) bool {
		asked = action
		return true
	})
	if err := f.svc.Clear(ctx, confirm); err != nil {
		t.Fatal(err)
	}
	if asked != "clear board" {
		t.Errorf("confirmer asked about %q", asked)
	}
	got := f.persisted(t)
	if len(got.Items) != 0 || len(got.Connections) != 0 {
		t.Errorf("persisted store not empty: %+v", got)
	}
	if f.emitter.Count(service.EventBoardCleared) != 1 {
		t.Error("expected board:cleared event")
	}
}

func TestBoardService_LoadMalformed(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	kv.Set(ctx, storage.DefaultBoardKey, []byte("not json"))
	svc := service.NewBoardService(board.New(board.Options{}), storage.NewBoardRepository(kv, ""), nil, nil)
	if err := svc.Load(ctx); !errors.Is(err, domain.ErrMalformedState) {
		t.Fatalf("expected ErrMalformedState, got %v", err)
	}
}

func TestBoardService_TeardownFlushes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, _ := f.svc.AddNote(ctx, domain.Point{}, "a")
	f.svc.Apply(a.ID, func(it *domain.Item) { it.X = 999 })

	if err := f.svc.Teardown(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.persisted(t); got.Items[0].X != 999 {
		t.Errorf("teardown did not flush pending change: x=%v", got.Items[0].X)
	}
	if len(f.svc.State().Items) != 0 {
		t.Error("teardown kept items in memory")
	}
}

// The full pointer scenario, driven through the controller against the
// real service so persistence is observed at each step.
func TestBoardService_PointerScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	note, _ := f.svc.AddNote(ctx, domain.Point{X: 100, Y: 100}, "suspect left at 9pm")
	photo, _ := f.svc.AddPhoto(ctx, domain.Point{X: 500, Y: 120}, "data:image/png;base64,iVBORw0KGgo=", "")

	ctrl := interaction.NewController(f.svc, nil, curvedPrompter{})
	for _, in := range []interaction.Input{
		interaction.ToggleLink{},
		interaction.PointerDown{Target: interaction.TargetBody, ItemID: note.ID},
		interaction.PointerDown{Target: interaction.TargetBody, ItemID: note.ID},
		interaction.PointerDown{Target: interaction.TargetBody, ItemID: photo.ID},
		interaction.ToggleLink{},
	} {
		if err := ctrl.Handle(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.persisted(t); len(got.Connections) != 1 || got.Connections[0].Type != domain.ConnectionCurved {
		t.Fatalf("expected one curved connection persisted, got %+v", got.Connections)
	}

	before := f.svc.Paths()[0]
	grab := domain.Point{X: note.X + 5, Y: note.Y + 5}
	ctrl.Handle(ctx, interaction.PointerDown{Target: interaction.TargetBody, ItemID: note.ID, Pos: grab, At: time.Now()})
	ctrl.Handle(ctx, interaction.PointerMove{Pos: domain.Point{X: grab.X + 50, Y: grab.Y}})
	ctrl.Handle(ctx, interaction.PointerUp{})

	after := f.svc.Paths()[0]
	if d := after.Start.X - before.Start.X; math.Abs(d-50) > 1e-9 {
		t.Errorf("endpoint moved %v, want 50", d)
	}
	if got := f.persisted(t); math.Abs(got.Items[0].X-(note.X+50)) > 1e-9 {
		t.Errorf("persisted x = %v, want %v", got.Items[0].X, note.X+50)
	}

	f.svc.RemoveItem(ctx, photo.ID)
	got := f.persisted(t)
	if len(got.Items) != 1 || len(got.Connections) != 0 {
		t.Errorf("after delete: %d items, %d connections", len(got.Items), len(got.Connections))
	}
	if len(f.svc.Paths()) != 0 {
		t.Error("expected no drawable paths")
	}
}

type curvedPrompter struct{}

func (curvedPrompter) ChooseConnection(string, string) (domain.ConnectionType, interaction.Answer) {
	return domain.ConnectionCurved, interaction.Accepted
}

// Compile-time check that the service drives the controller.
var _ interaction.Board = (*service.BoardService)(nil)
var _ render.GeometryProvider = (*render.LayoutGeometry)(nil)

func TestBoardService_IsPersistedTracksFlushes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	note, err := f.svc.AddNote(ctx, domain.Point{X: 10, Y: 10}, "")
	if err != nil {
		t.Fatal(err)
	}
	if !f.svc.IsPersisted(f.persisted(t)) {
		t.Fatal("flushed state not recognised")
	}

	f.svc.Apply(note.ID, func(it *domain.Item) { it.X = 500 })
	if f.svc.IsPersisted(f.svc.State()) {
		t.Error("unflushed gesture state reported as persisted")
	}
	if !f.svc.IsPersisted(f.persisted(t)) {
		t.Error("file state no longer recognised during gesture")
	}

	if err := f.svc.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if !f.svc.IsPersisted(f.svc.State()) {
		t.Error("state after Flush not recognised")
	}
}
