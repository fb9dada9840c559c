package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"folio/internal/models"
	"folio/internal/moderation"
	"folio/internal/secret"
)

const adminName = "Studio"

// commentFixture returns a Comments group over one project (id 1).
func commentFixture() (*Comments, *memComments) {
	projects := &memProjects{}
	projects.add("Poster", nil)
	comments := &memComments{}
	return NewComments(comments, projects, secret.Bcrypt{Cost: 4}, adminName), comments
}

type threadResponse struct {
	Comments []commentNode `json:"comments"`
	Count    int           `json:"count"`
}

func TestCommentsCreateVisitor(t *testing.T) {
	h, comments := commentFixture()

	rr := do(t, http.MethodPost, "/api/projects/{id}/comments", "/api/projects/1/comments", h.Create,
		`{"author":" kim ","password":"1234","content":"Lovely **work**"}`, false)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}

	c := comments.items[0]
	if c.Author != "kim" || c.IsAdmin {
		t.Errorf("comment: %+v", c)
	}
	if c.Secret == "1234" || !secret.IsBcrypt(c.Secret) {
		t.Errorf("secret stored unhashed: %q", c.Secret)
	}
}

func TestCommentsCreateAdmin(t *testing.T) {
	h, comments := commentFixture()

	rr := do(t, http.MethodPost, "/api/projects/{id}/comments", "/api/projects/1/comments", h.Create,
		`{"author":"ignored","content":"Thanks!"}`, true)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}

	c := comments.items[0]
	if c.Author != adminName || !c.IsAdmin || c.Secret != "" {
		t.Errorf("admin comment: %+v", c)
	}
}

func TestCommentsCreateRejects(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"missing password", "/api/projects/1/comments", `{"author":"kim","content":"hi"}`, http.StatusBadRequest},
		{"missing content", "/api/projects/1/comments", `{"author":"kim","password":"1"}`, http.StatusBadRequest},
		{"unknown project", "/api/projects/9/comments", `{"author":"kim","password":"1","content":"hi"}`, http.StatusNotFound},
		{"parent not found", "/api/projects/1/comments", `{"author":"kim","password":"1","content":"hi","parentId":77}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := commentFixture()
			rr := do(t, http.MethodPost, "/api/projects/{id}/comments", tt.path, h.Create, tt.body, false)
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d (%s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestCommentsListTree(t *testing.T) {
	h, comments := commentFixture()
	// Stored in thread order: newest group first, root before replies.
	comments.items = []models.Comment{
		{ID: 3, ProjectID: 1, Author: "c", Content: "third"},
		{ID: 1, ProjectID: 1, Author: "a", Content: "first"},
		{ID: 2, ProjectID: 1, Author: "b", Content: "reply", ParentID: ptr(int64(1))},
		{ID: 5, ProjectID: 1, Author: "e", Content: "orphan", ParentID: ptr(int64(4))},
	}

	rr := do(t, http.MethodGet, "/api/projects/{id}/comments", "/api/projects/1/comments", h.List, "", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}

	resp := decode[threadResponse](t, rr.Body.Bytes())
	if len(resp.Comments) != 2 || resp.Comments[0].ID != 3 || resp.Comments[1].ID != 1 {
		t.Fatalf("roots: %+v", resp.Comments)
	}
	if r := resp.Comments[1].Replies; len(r) != 1 || r[0].ID != 2 {
		t.Errorf("replies of 1: %+v", r)
	}
	if resp.Count != 3 {
		t.Errorf("count: got %d, want 3 (orphan hidden)", resp.Count)
	}
	if strings.Contains(rr.Body.String(), "secret") || strings.Contains(rr.Body.String(), "password") {
		t.Error("secrets must never be serialised")
	}
	if !strings.Contains(resp.Comments[0].ContentHTML, "<p>third</p>") {
		t.Errorf("contentHtml: %q", resp.Comments[0].ContentHTML)
	}
}

func TestCommentsListEscapesHTML(t *testing.T) {
	h, comments := commentFixture()
	comments.items = []models.Comment{{ID: 1, ProjectID: 1, Author: "x", Content: `<script>alert(1)</script>`}}

	rr := do(t, http.MethodGet, "/api/projects/{id}/comments", "/api/projects/1/comments", h.List, "", false)
	resp := decode[threadResponse](t, rr.Body.Bytes())
	if strings.Contains(resp.Comments[0].ContentHTML, "<script>") {
		t.Errorf("raw HTML passed through: %q", resp.Comments[0].ContentHTML)
	}
}

func TestCommentsDelete(t *testing.T) {
	h, comments := commentFixture()
	hashed, _ := secret.Bcrypt{Cost: 4}.Hash("1234")
	comments.items = []models.Comment{{ID: 1, ProjectID: 1, Author: "kim", Secret: hashed, Content: "hi"}}
	comments.nextID = 1

	path := "/api/projects/1/comments/1"
	pattern := "/api/projects/{id}/comments/{commentId}"

	rr := do(t, http.MethodDelete, pattern, path, h.Delete, `{"password":"wrong"}`, false)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("wrong password: got %d, want 403", rr.Code)
	}
	if len(comments.items) != 1 {
		t.Fatal("comment removed despite wrong password")
	}

	rr = do(t, http.MethodDelete, pattern, "/api/projects/1/comments/9", h.Delete, `{"password":"1234"}`, false)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown comment: got %d, want 404", rr.Code)
	}

	rr = do(t, http.MethodDelete, pattern, path, h.Delete, `{"password":"1234"}`, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("right password: got %d", rr.Code)
	}
	if len(comments.items) != 0 {
		t.Error("comment not removed")
	}
}

func TestCommentsDeleteAdminBypass(t *testing.T) {
	h, comments := commentFixture()
	comments.items = []models.Comment{{ID: 1, ProjectID: 1, Author: "kim", Secret: "irrelevant", Content: "hi"}}

	rr := do(t, http.MethodDelete, "/api/projects/{id}/comments/{commentId}", "/api/projects/1/comments/1", h.Delete, "", true)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin delete: got %d (%s)", rr.Code, rr.Body.String())
	}
	if len(comments.items) != 0 {
		t.Error("comment not removed")
	}

	rr = do(t, http.MethodDelete, "/api/projects/{id}/comments/{commentId}", "/api/projects/1/comments/1", h.Delete, "", true)
	if rr.Code != http.StatusNotFound {
		t.Errorf("admin delete of missing comment: got %d, want 404", rr.Code)
	}
}

func TestCommentsReplyToReplyRejected(t *testing.T) {
	h, _ := commentFixture()
	create := func(body string) int {
		rr := do(t, http.MethodPost, "/api/projects/{id}/comments", "/api/projects/1/comments", h.Create, body, false)
		return rr.Code
	}

	if code := create(`{"author":"a","password":"1","content":"root"}`); code != http.StatusCreated {
		t.Fatalf("root: %d", code)
	}
	if code := create(fmt.Sprintf(`{"author":"b","password":"1","content":"reply","parentId":%d}`, 1)); code != http.StatusCreated {
		t.Fatalf("reply: %d", code)
	}
	if code := create(`{"author":"c","password":"1","content":"deeper","parentId":2}`); code != http.StatusBadRequest {
		t.Errorf("reply to reply: got %d, want 400", code)
	}
}

type stubModerator struct {
	verdict *moderation.Verdict
	err     error
	calls   int
}

func (m *stubModerator) Check(context.Context, string) (*moderation.Verdict, error) {
	m.calls++
	return m.verdict, m.err
}

func TestCommentsModeration(t *testing.T) {
	tests := []struct {
		name  string
		mod   *stubModerator
		admin bool
		want  int
		calls int
	}{
		{"flagged", &stubModerator{verdict: &moderation.Verdict{Categories: []string{"hate"}}}, false, http.StatusBadRequest, 1},
		{"clean", &stubModerator{verdict: &moderation.Verdict{Safe: true}}, false, http.StatusCreated, 1},
		{"outage fails open", &stubModerator{err: errors.New("timeout")}, false, http.StatusCreated, 1},
		{"admin not screened", &stubModerator{verdict: &moderation.Verdict{}}, true, http.StatusCreated, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, comments := commentFixture()
			h.SetModerator(tt.mod)

			rr := do(t, http.MethodPost, "/api/projects/{id}/comments", "/api/projects/1/comments", h.Create,
				`{"author":"kim","password":"1","content":"hello"}`, tt.admin)
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d (%s)", rr.Code, tt.want, rr.Body.String())
			}
			if tt.mod.calls != tt.calls {
				t.Errorf("moderator calls: got %d, want %d", tt.mod.calls, tt.calls)
			}
			if tt.want != http.StatusCreated && len(comments.items) != 0 {
				t.Error("rejected comment was stored")
			}
		})
	}
}
