package gitx

import (
	"fmt"
	"strings"
	"testing"
)

// fakeRunner answers git invocations from a canned table keyed on the
// joined argument list.
type fakeRunner struct {
	responses map[string]string
	calls     []string
}

func (f *fakeRunner) Run(dir string, args ...string) (string, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if out, ok := f.responses[key]; ok {
		return out, nil
	}
	return "", fmt.Errorf("git %s: unknown revision", key)
}

func (f *fakeRunner) called(key string) bool {
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

const zeroSHA = "0000000000000000000000000000000000000000"

func TestParsePushUpdates(t *testing.T) {
	stdin := "refs/heads/main abc123 refs/heads/main def456\n" +
		"\n" +
		"garbage line\n" +
		"refs/heads/feature   111   refs/heads/feature   " + zeroSHA + "\n"

	updates := ParsePushUpdates(stdin)
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].LocalRef != "refs/heads/main" || updates[0].RemoteSHA != "def456" {
		t.Errorf("unexpected first update: %+v", updates[0])
	}
	if updates[1].RemoteSHA != zeroSHA {
		t.Errorf("expected zero remote sha, got %q", updates[1].RemoteSHA)
	}
}

func TestIsZeroSHA(t *testing.T) {
	if !IsZeroSHA(zeroSHA) {
		t.Error("all-zero hash should be zero")
	}
	if IsZeroSHA("abc000") || IsZeroSHA("") {
		t.Error("non-zero or empty values should not be zero")
	}
}

func rangeResponses(base, head string) map[string]string {
	return map[string]string{
		"diff --numstat --find-renames " + base + " " + head:           "3\t1\ta.go\n",
		"diff --name-status -z --find-renames " + base + " " + head:    "M\x00a.go\x00",
		"diff --patch --no-color --no-ext-diff --unified=3 --find-renames " + base + " " + head: "diff --git a/a.go b/a.go\n",
		"rev-list " + base + ".." + head:                               "c1\nc2\n",
	}
}

func TestResolvePushUsesResolvableRemoteSHA(t *testing.T) {
	r := &fakeRunner{responses: rangeResponses("base1", "head1")}
	r.responses["rev-parse --verify --quiet base1^{commit}"] = "base1\n"

	g := NewRepo("/repo", r)
	res, err := g.ResolvePush("origin", []PushUpdate{
		{LocalRef: "refs/heads/feature", LocalSHA: "head1", RemoteRef: "refs/heads/feature", RemoteSHA: "base1"},
	}, "head1")
	if err != nil {
		t.Fatalf("ResolvePush: %v", err)
	}

	if res.InferredBranch != "feature" {
		t.Errorf("inferred branch = %q, want feature", res.InferredBranch)
	}
	if len(res.CommitSHAs) != 2 || res.CommitSHAs[0] != "c1" {
		t.Errorf("commit shas = %v", res.CommitSHAs)
	}
	if len(res.Files) != 1 || res.Files[0].Path != "a.go" {
		t.Errorf("files = %+v", res.Files)
	}
	if r.called("merge-base head1 origin/main") {
		t.Error("merge-base should not run when remote sha resolves locally")
	}
}

func TestResolvePushNewBranchUsesMergeBase(t *testing.T) {
	r := &fakeRunner{responses: rangeResponses("mb1", "head1")}
	r.responses["symbolic-ref --quiet --short refs/remotes/origin/HEAD"] = "origin/main\n"
	r.responses["merge-base head1 origin/main"] = "mb1\n"

	g := NewRepo("/repo", r)
	res, err := g.ResolvePush("origin", []PushUpdate{
		{LocalRef: "refs/heads/feature", LocalSHA: "head1", RemoteRef: "refs/heads/feature", RemoteSHA: zeroSHA},
	}, "head1")
	if err != nil {
		t.Fatalf("ResolvePush: %v", err)
	}
	if len(res.CommitSHAs) != 2 {
		t.Errorf("expected range commits via merge-base, got %v", res.CommitSHAs)
	}
}

func TestResolvePushSkipsUpdateWithoutSharedHistory(t *testing.T) {
	// The remote HEAD resolves but shares no history with the pushed
	// branch: no base exists, so the update must be skipped instead of
	// diffed against an unrelated tip.
	r := &fakeRunner{responses: map[string]string{
		"symbolic-ref --quiet --short refs/remotes/origin/HEAD": "origin/main\n",
	}}

	g := NewRepo("/repo", r)
	res, err := g.ResolvePush("origin", []PushUpdate{
		{LocalRef: "refs/heads/feature", LocalSHA: "head1", RemoteRef: "refs/heads/feature", RemoteSHA: zeroSHA},
	}, "head1")
	if err != nil {
		t.Fatalf("ResolvePush: %v", err)
	}
	if len(res.Files) != 0 || len(res.CommitSHAs) != 0 || res.Patch != "" {
		t.Errorf("unrelated history should produce an empty change set, got %+v", res)
	}
	if !r.called("merge-base head1 origin/main") {
		t.Error("expected a merge-base attempt before skipping")
	}
}

func TestResolvePushSkipsBranchDeletion(t *testing.T) {
	r := &fakeRunner{responses: map[string]string{}}
	g := NewRepo("/repo", r)

	res, err := g.ResolvePush("origin", []PushUpdate{
		{LocalRef: "refs/heads/feature", LocalSHA: zeroSHA, RemoteRef: "refs/heads/feature", RemoteSHA: "abc"},
	}, "")
	if err != nil {
		t.Fatalf("ResolvePush: %v", err)
	}
	if len(res.Files) != 0 || len(res.CommitSHAs) != 0 {
		t.Errorf("deletion should produce an empty change set, got %+v", res)
	}
}

func TestResolvePushFallsBackToUpstream(t *testing.T) {
	r := &fakeRunner{responses: rangeResponses("up1", "head1")}
	r.responses["rev-parse --verify --quiet @{u}^{commit}"] = "up1\n"

	g := NewRepo("/repo", r)
	res, err := g.ResolvePush("origin", nil, "head1")
	if err != nil {
		t.Fatalf("ResolvePush: %v", err)
	}
	if len(res.CommitSHAs) != 2 {
		t.Errorf("expected fallback range commits, got %v", res.CommitSHAs)
	}
	if res.InferredBranch != "" {
		t.Errorf("no branch should be inferred without updates, got %q", res.InferredBranch)
	}
}

func TestResolvePushDedupesAcrossBranches(t *testing.T) {
	r := &fakeRunner{responses: map[string]string{}}
	for k, v := range rangeResponses("b1", "h1") {
		r.responses[k] = v
	}
	for k, v := range rangeResponses("b2", "h2") {
		r.responses[k] = v
	}
	// Both branches touch a.go and share commit c1; second range also
	// carries c3.
	r.responses["rev-list b2..h2"] = "c1\nc3\n"
	r.responses["rev-parse --verify --quiet b1^{commit}"] = "b1\n"
	r.responses["rev-parse --verify --quiet b2^{commit}"] = "b2\n"

	g := NewRepo("/repo", r)
	res, err := g.ResolvePush("origin", []PushUpdate{
		{LocalRef: "refs/heads/one", LocalSHA: "h1", RemoteRef: "refs/heads/one", RemoteSHA: "b1"},
		{LocalRef: "refs/heads/two", LocalSHA: "h2", RemoteRef: "refs/heads/two", RemoteSHA: "b2"},
	}, "h1")
	if err != nil {
		t.Fatalf("ResolvePush: %v", err)
	}

	if len(res.Files) != 1 {
		t.Errorf("files should dedupe by final path, got %+v", res.Files)
	}
	want := []string{"c1", "c2", "c3"}
	if len(res.CommitSHAs) != len(want) {
		t.Fatalf("commit shas = %v, want %v", res.CommitSHAs, want)
	}
	for i, sha := range want {
		if res.CommitSHAs[i] != sha {
			t.Errorf("commit sha[%d] = %q, want %q", i, res.CommitSHAs[i], sha)
		}
	}
	if res.InferredBranch != "" {
		t.Errorf("multi-branch push should not infer a branch, got %q", res.InferredBranch)
	}
}
