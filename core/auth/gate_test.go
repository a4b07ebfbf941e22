package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tutorlink/backend/core/user"
)

type fakeProvider struct {
	ready chan struct{}

	mu      sync.Mutex
	current *user.User
	subs    []func(*user.User)
}

var _ Provider = (*fakeProvider)(nil)

func newFakeProvider() *fakeProvider {
	return &fakeProvider{ready: make(chan struct{})}
}

func (p *fakeProvider) Ready() <-chan struct{} { return p.ready }

func (p *fakeProvider) Current() (user.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return user.User{}, false
	}
	return *p.current, true
}

func (p *fakeProvider) OnChange(fn func(*user.User)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

func (p *fakeProvider) set(usr *user.User) {
	p.mu.Lock()
	p.current = usr
	subs := append(([]func(*user.User))(nil), p.subs...)
	p.mu.Unlock()
	for _, fn := range subs {
		fn(usr)
	}
}

func TestGateWaitsForReadiness(t *testing.T) {
	provider := newFakeProvider()
	gate := NewGate(provider, "/login")

	done := make(chan Decision, 1)
	go func() {
		decision, err := gate.CanEnter(context.Background(), "/student")
		if err != nil {
			t.Errorf("CanEnter(): %v", err)
		}
		done <- decision
	}()

	// readiness is unknown; the check must be suspended
	select {
	case <-done:
		t.Fatal("CanEnter returned before readiness was known")
	case <-time.After(50 * time.Millisecond):
	}

	provider.set(&user.User{ID: "stu1", Role: user.RoleStudent})
	close(provider.ready)

	select {
	case decision := <-done:
		if !decision.Allow {
			t.Errorf("decision = %+v, want Allow", decision)
		}
	case <-time.After(time.Second):
		t.Fatal("CanEnter still blocked after readiness")
	}
}

func TestGateRedirectsWhenIdentityAbsent(t *testing.T) {
	provider := newFakeProvider()
	close(provider.ready)
	gate := NewGate(provider, "/login")

	decision, err := gate.CanEnter(context.Background(), "/student")
	if err != nil {
		t.Fatalf("CanEnter(): %v", err)
	}
	if decision.Allow || decision.RedirectTo != "/login" {
		t.Errorf("decision = %+v, want redirect to /login", decision)
	}
}

func TestGateAbandonsWaitOnCancel(t *testing.T) {
	provider := newFakeProvider() // never becomes ready
	gate := NewGate(provider, "/login")

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := gate.CanEnter(ctx, "/student")
		errc <- err
	}()
	cancel()

	select {
	case err := <-errc:
		if err != context.Canceled {
			t.Errorf("CanEnter() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("CanEnter did not honor cancellation")
	}
}

func TestGateIsReusableAfterLogout(t *testing.T) {
	provider := newFakeProvider()
	close(provider.ready)
	gate := NewGate(provider, "/login")

	provider.set(&user.User{ID: "stu1", Role: user.RoleStudent})
	if decision, _ := gate.CanEnter(context.Background(), "/student"); !decision.Allow {
		t.Errorf("decision = %+v, want Allow while signed in", decision)
	}

	provider.set(nil)
	if decision, _ := gate.CanEnter(context.Background(), "/student"); decision.Allow {
		t.Errorf("decision = %+v, want redirect after logout", decision)
	}
}
