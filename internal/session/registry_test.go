package session

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestIssueResolveRoundTrip(t *testing.T) {
	r := NewRegistry()

	token, err := r.Issue(42)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if !strings.HasPrefix(token, TokenPrefix) {
		t.Fatalf("token %q missing prefix %q", token, TokenPrefix)
	}

	userID, ok := r.Resolve(token)
	if !ok {
		t.Fatalf("Resolve failed for freshly issued token")
	}

	if userID != 42 {
		t.Fatalf("Resolve returned user %d, want 42", userID)
	}
}

func TestIssueTokensAreUnique(t *testing.T) {
	r := NewRegistry()
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		token, err := r.Issue(1)
		if err != nil {
			t.Fatalf("Issue error: %v", err)
		}

		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token issued: %s", token)
		}
		seen[token] = struct{}{}
	}
}

func TestMultipleSessionsPerUser(t *testing.T) {
	r := NewRegistry()

	t1, _ := r.Issue(7)
	t2, _ := r.Issue(7)

	if _, ok := r.Resolve(t1); !ok {
		t.Fatalf("first session should remain valid after second issue")
	}
	if _, ok := r.Resolve(t2); !ok {
		t.Fatalf("second session should be valid")
	}

	// revoking one session must not touch the other
	if !r.Revoke(t1) {
		t.Fatalf("Revoke(t1) = false, want true")
	}
	if _, ok := r.Resolve(t1); ok {
		t.Fatalf("revoked token still resolves")
	}
	if _, ok := r.Resolve(t2); !ok {
		t.Fatalf("sibling session was revoked too")
	}
}

func TestRevokeReportsExistence(t *testing.T) {
	r := NewRegistry()

	token, _ := r.Issue(1)

	if !r.Revoke(token) {
		t.Fatalf("first Revoke = false, want true")
	}
	if r.Revoke(token) {
		t.Fatalf("second Revoke = true, want false")
	}
}

func TestResolveRejectsMalformedTokens(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Issue(1)

	for _, token := range []string{"", "garbage", "Bearer abc", "mtok", "jwt.header.payload"} {
		if _, ok := r.Resolve(token); ok {
			t.Fatalf("Resolve(%q) = ok, want invalid", token)
		}
	}
}

func TestExpiryPolicy(t *testing.T) {
	r := NewRegistry(WithExpiryPolicy(MaxAge(time.Nanosecond)))

	token, _ := r.Issue(9)
	time.Sleep(time.Millisecond)

	if _, ok := r.Resolve(token); ok {
		t.Fatalf("expired token still resolves")
	}

	// the expired entry is dropped, so revoke reports it gone
	if r.Revoke(token) {
		t.Fatalf("expired token should have been evicted on resolve")
	}
}

func TestConcurrentIssueResolveRevoke(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func(userID int) {
			defer wg.Done()

			token, err := r.Issue(userID)
			if err != nil {
				t.Errorf("Issue error: %v", err)
				return
			}

			got, ok := r.Resolve(token)
			if !ok || got != userID {
				t.Errorf("Resolve = (%d, %v), want (%d, true)", got, ok, userID)
				return
			}

			if !r.Revoke(token) {
				t.Errorf("Revoke = false for live token")
				return
			}

			if _, ok := r.Resolve(token); ok {
				t.Errorf("token resolves after revoke completed")
			}
		}(i + 1)
	}

	wg.Wait()
}
