package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/supportdesk/internal/clock"
	"github.com/hitoshi/supportdesk/internal/metrics"
	"github.com/hitoshi/supportdesk/internal/model"
	"github.com/hitoshi/supportdesk/internal/repository"
	"github.com/hitoshi/supportdesk/internal/session"
	"github.com/prometheus/client_golang/prometheus"
)

// --- モック定義 ---

// recordingDelayer は待機せずに要求された待機時間を記録する。
type recordingDelayer struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (d *recordingDelayer) Delay(dur time.Duration) {
	d.mu.Lock()
	d.delays = append(d.delays, dur)
	d.mu.Unlock()
}

type failingSlotRepo struct {
	repository.SlotRepository
	putErr    error
	deleteErr error
}

func (r *failingSlotRepo) Put(ctx context.Context, key string, value []byte) error {
	if r.putErr != nil {
		return r.putErr
	}
	return r.SlotRepository.Put(ctx, key, value)
}

func (r *failingSlotRepo) Delete(ctx context.Context, key string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.SlotRepository.Delete(ctx, key)
}

// --- ヘルパー ---

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(clock.Instant{}, metrics.NewCollector(prometheus.NewRegistry()), DefaultServiceConfig())
}

func newTestStore(repo repository.SlotRepository) *session.Store {
	store := session.NewStore(session.NewSlotPersistence(repo, "profile-1"))
	store.Restore(context.Background())
	return store
}

// --- テスト ---

func TestLogin_Success_AuthenticatesWithGivenEmail(t *testing.T) {
	svc := newTestService(t)
	store := newTestStore(repository.NewMemorySlotRepo())

	identity, err := svc.Login(context.Background(), store, "client@example.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	sess := store.Session()
	if !sess.IsAuthenticated() {
		t.Fatal("expected authenticated session")
	}
	if sess.Identity.Email != "client@example.com" {
		t.Errorf("email = %q, want %q", sess.Identity.Email, "client@example.com")
	}
	want := model.Identity{ID: DemoUserID, Name: DemoUserName, Email: "client@example.com", Phone: DemoUserPhone}
	if *identity != want || *sess.Identity != want {
		t.Errorf("identity = %+v, want %+v", *identity, want)
	}
}

func TestLogin_EmptyFields_FailsAndLeavesSessionUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "secret"},
		{"empty password", "client@example.com", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name+" from anonymous", func(t *testing.T) {
			svc := newTestService(t)
			repo := repository.NewMemorySlotRepo()
			store := newTestStore(repo)

			_, err := svc.Login(context.Background(), store, tt.email, tt.password)
			if !model.IsValidationError(err) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if store.Session().IsAuthenticated() {
				t.Error("session should remain anonymous")
			}
			if raw, _ := repo.Get(context.Background(), session.SlotKey("profile-1")); raw != nil {
				t.Errorf("slot written on failed login: %s", raw)
			}
		})

		t.Run(tt.name+" from authenticated", func(t *testing.T) {
			svc := newTestService(t)
			store := newTestStore(repository.NewMemorySlotRepo())
			before, _ := svc.Register(context.Background(), store, RegisterInput{Name: "Alice", Email: "a@x.com", Password: "secret"})

			_, err := svc.Login(context.Background(), store, tt.email, tt.password)
			if !model.IsValidationError(err) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			after := store.Session()
			if !after.IsAuthenticated() || *after.Identity != *before {
				t.Errorf("session changed: got %+v, want %+v", after.Identity, before)
			}
		})
	}
}

func TestLogin_ValidationErrorMessage(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Login(context.Background(), newTestStore(repository.NewMemorySlotRepo()), "", "")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if apiErr.Message != "Email and password are required" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestLogin_ThenRestore_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	repo := repository.NewMemorySlotRepo()
	store := newTestStore(repo)

	identity, err := svc.Login(context.Background(), store, "client@example.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	// プロセス再起動を模擬して同じスロットから新しいStoreを復元する
	restarted := newTestStore(repo)
	sess := restarted.Session()
	if !sess.IsAuthenticated() {
		t.Fatal("expected restored session to be authenticated")
	}
	if *sess.Identity != *identity {
		t.Errorf("restored = %+v, want %+v", *sess.Identity, *identity)
	}
}

func TestLogin_WaitsConfiguredDelayBeforeApplying(t *testing.T) {
	delayer := &recordingDelayer{}
	svc := NewService(delayer, nil, ServiceConfig{LoginDelay: 800 * time.Millisecond})

	svc.Login(context.Background(), newTestStore(repository.NewMemorySlotRepo()), "a@x.com", "secret")

	if len(delayer.delays) != 1 || delayer.delays[0] != 800*time.Millisecond {
		t.Errorf("delays = %v, want [800ms]", delayer.delays)
	}
}

func TestLogin_ValidationAlsoWaitsDelay(t *testing.T) {
	delayer := &recordingDelayer{}
	svc := NewService(delayer, nil, DefaultServiceConfig())

	svc.Login(context.Background(), newTestStore(repository.NewMemorySlotRepo()), "", "")

	if len(delayer.delays) != 1 {
		t.Errorf("delays = %v, want one wait before the validation failure", delayer.delays)
	}
}

func TestLogin_CanceledContextStillApplies(t *testing.T) {
	svc := newTestService(t)
	store := newTestStore(repository.NewMemorySlotRepo())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Login(ctx, store, "a@x.com", "secret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !store.Session().IsAuthenticated() {
		t.Error("operation must apply its effect even when the caller went away")
	}
}

func TestLogin_PersistenceFailure_ReturnsErrorAndStaysAnonymous(t *testing.T) {
	svc := newTestService(t)
	repo := &failingSlotRepo{SlotRepository: repository.NewMemorySlotRepo(), putErr: errors.New("disk full")}
	store := newTestStore(repo)

	_, err := svc.Login(context.Background(), store, "a@x.com", "secret")
	if err == nil {
		t.Fatal("expected error")
	}
	if model.IsValidationError(err) {
		t.Error("persistence failures are not validation errors")
	}
	if store.Session().IsAuthenticated() {
		t.Error("session must stay anonymous")
	}
}

func TestRegister_Success(t *testing.T) {
	svc := newTestService(t)
	store := newTestStore(repository.NewMemorySlotRepo())

	identity, err := svc.Register(context.Background(), store, RegisterInput{
		Name: "Alice", Email: "a@x.com", Password: "secret", Phone: "+229000",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if !strings.HasPrefix(identity.ID, "user-") {
		t.Errorf("id = %q, want user- prefix", identity.ID)
	}
	if identity.Name != "Alice" || identity.Email != "a@x.com" || identity.Phone != "+229000" {
		t.Errorf("identity = %+v", identity)
	}
	if sess := store.Session(); !sess.IsAuthenticated() || *sess.Identity != *identity {
		t.Errorf("session = %+v, want %+v", sess.Identity, identity)
	}
}

func TestRegister_TwoCallsProduceDistinctIDs(t *testing.T) {
	svc := newTestService(t)
	store := newTestStore(repository.NewMemorySlotRepo())

	alice, err := svc.Register(context.Background(), store, RegisterInput{Name: "Alice", Email: "a@x.com", Password: "secret", Phone: "+229000"})
	if err != nil {
		t.Fatalf("Register(Alice) returned error: %v", err)
	}
	bob, err := svc.Register(context.Background(), store, RegisterInput{Name: "Bob", Email: "b@y.com", Password: "secret2"})
	if err != nil {
		t.Fatalf("Register(Bob) returned error: %v", err)
	}

	if alice.ID == bob.ID {
		t.Errorf("ids should differ, both %q", alice.ID)
	}
	if bob.Phone != "" {
		t.Errorf("phone = %q, want empty when omitted", bob.Phone)
	}
}

func TestRegister_MissingRequiredField_Fails(t *testing.T) {
	inputs := []RegisterInput{
		{Email: "a@x.com", Password: "secret"},
		{Name: "Alice", Password: "secret"},
		{Name: "Alice", Email: "a@x.com"},
	}

	for _, in := range inputs {
		svc := newTestService(t)
		store := newTestStore(repository.NewMemorySlotRepo())

		_, err := svc.Register(context.Background(), store, in)
		if !model.IsValidationError(err) {
			t.Errorf("Register(%+v) error = %v, want ValidationError", in, err)
		}
		if store.Session().IsAuthenticated() {
			t.Errorf("Register(%+v) changed the session", in)
		}
	}
}

func TestRegister_IDGeneratorFailure(t *testing.T) {
	svc := newTestService(t)
	svc.newID = func() (string, error) { return "", errors.New("entropy exhausted") }
	store := newTestStore(repository.NewMemorySlotRepo())

	if _, err := svc.Register(context.Background(), store, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret"}); err == nil {
		t.Fatal("expected error")
	}
	if store.Session().IsAuthenticated() {
		t.Error("session must stay anonymous")
	}
}

func TestLogout_ClearsSessionAndSlot(t *testing.T) {
	svc := newTestService(t)
	repo := repository.NewMemorySlotRepo()
	store := newTestStore(repo)
	svc.Login(context.Background(), store, "a@x.com", "secret")

	svc.Logout(context.Background(), store)

	if store.Session().IsAuthenticated() {
		t.Error("expected anonymous session after logout")
	}
	if raw, _ := repo.Get(context.Background(), session.SlotKey("profile-1")); raw != nil {
		t.Errorf("slot still present after logout: %s", raw)
	}
	if newTestStore(repo).Session().IsAuthenticated() {
		t.Error("restart after logout must be anonymous")
	}
}

func TestLogout_TwiceIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	store := newTestStore(repository.NewMemorySlotRepo())
	svc.Login(context.Background(), store, "a@x.com", "secret")

	svc.Logout(context.Background(), store)
	if store.Session().IsAuthenticated() {
		t.Error("expected anonymous after first logout")
	}
	svc.Logout(context.Background(), store)
	if store.Session().IsAuthenticated() {
		t.Error("expected anonymous after second logout")
	}
}

func TestLogout_SlotFailureStillClearsSession(t *testing.T) {
	svc := newTestService(t)
	repo := &failingSlotRepo{SlotRepository: repository.NewMemorySlotRepo()}
	store := newTestStore(repo)
	svc.Login(context.Background(), store, "a@x.com", "secret")

	repo.deleteErr = errors.New("backend down")
	svc.Logout(context.Background(), store)

	if store.Session().IsAuthenticated() {
		t.Error("logout must clear the in-memory session even when the slot cannot be removed")
	}
}

func TestLogout_DoesNotDelay(t *testing.T) {
	delayer := &recordingDelayer{}
	svc := NewService(delayer, nil, DefaultServiceConfig())

	svc.Logout(context.Background(), newTestStore(repository.NewMemorySlotRepo()))

	if len(delayer.delays) != 0 {
		t.Errorf("delays = %v, want none", delayer.delays)
	}
}

func TestClearLocalSession_ClearsLikeLogout(t *testing.T) {
	svc := newTestService(t)
	repo := repository.NewMemorySlotRepo()
	store := newTestStore(repo)
	svc.Login(context.Background(), store, "a@x.com", "secret")

	svc.ClearLocalSession(context.Background(), store)

	if store.Session().IsAuthenticated() {
		t.Error("expected anonymous session")
	}
	if raw, _ := repo.Get(context.Background(), session.SlotKey("profile-1")); raw != nil {
		t.Error("slot should be cleared")
	}
}

func TestOperations_RecordMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(clock.Instant{}, metrics.NewCollector(reg), DefaultServiceConfig())
	store := newTestStore(repository.NewMemorySlotRepo())

	svc.Login(context.Background(), store, "", "")
	svc.Login(context.Background(), store, "a@x.com", "secret")
	svc.Logout(context.Background(), store)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather: %v", err)
	}
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "supportdesk_session_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			key := ""
			for _, lp := range m.GetLabel() {
				key += lp.GetName() + "=" + lp.GetValue() + ","
			}
			counts[key] = m.GetCounter().GetValue()
		}
	}

	if counts["op=login,result=rejected,"] != 1 {
		t.Errorf("login rejected = %v, want 1 (all: %v)", counts["op=login,result=rejected,"], counts)
	}
	if counts["op=login,result=success,"] != 1 {
		t.Errorf("login success = %v, want 1", counts["op=login,result=success,"])
	}
	if counts["op=logout,result=success,"] != 1 {
		t.Errorf("logout success = %v, want 1", counts["op=logout,result=success,"])
	}
}

func TestNewUserID_IsPrefixedAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := newUserID()
		if err != nil {
			t.Fatalf("newUserID returned error: %v", err)
		}
		if !strings.HasPrefix(id, "user-") {
			t.Fatalf("id = %q, want user- prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
