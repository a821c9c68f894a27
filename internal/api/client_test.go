package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListTasksDecodesBothShapes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/7/tasks" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":1,"title":"flat","status":"TODO","projectId":7},
			{"id":2,"title":"nested","status":"DONE","project":{"id":7}}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	tasks, err := client.ListTasks(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len = %d", len(tasks))
	}
	for _, task := range tasks {
		if task.ProjectID != 7 {
			t.Errorf("task %d ProjectID = %d, want 7", task.ID, task.ProjectID)
		}
	}
}

func TestBearerTokenAttachedWhenPresent(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	token := ""
	client := NewClient(server.URL, func() string { return token })

	if _, err := client.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("unauthenticated request carried Authorization %q", gotAuth)
	}

	token = "abc123"
	if _, err := client.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestAPIErrorPrefersStructuredMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"title must not be blank"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.CreateTask(context.Background(), 1, TaskDraft{Title: ""})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "title must not be blank" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestAPIErrorFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	err := client.DeleteTask(context.Background(), 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := ErrorMessage(err); got != "Forbidden" {
		t.Errorf("ErrorMessage = %q", got)
	}
}

func TestErrorMessageForTransportFailure(t *testing.T) {
	// Nothing listens here; the dial fails.
	client := NewClient("http://127.0.0.1:1", nil)
	_, err := client.ListProjects(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if msg := ErrorMessage(err); msg == "" || msg == defaultErrorMessage {
		t.Errorf("ErrorMessage = %q, want the transport error text", msg)
	}
}

func TestGetTaskNormalizesNestedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks/3" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":3,"title":"single","status":"IN_PROGRESS","project":{"id":4},"assignee":{"id":2,"username":"maria"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	task, err := client.GetTask(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.ID != 3 || task.ProjectID != 4 {
		t.Errorf("task = %+v", task)
	}
	if task.AssigneeUsername != "maria" {
		t.Errorf("AssigneeUsername = %q", task.AssigneeUsername)
	}
}

func TestListUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" || r.Method != http.MethodGet {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`[
			{"id":1,"username":"admin","role":"ROLE_ADMIN"},
			{"id":2,"username":"maria","role":"ROLE_USER"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Role != "ROLE_ADMIN" || users[1].Username != "maria" {
		t.Errorf("users = %+v", users)
	}
}

func TestCreateUserSendsCredentialsAndRole(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if body["username"] != "newbie" || body["password"] != "secret" || body["role"] != "ROLE_MODERATOR" {
			t.Errorf("body = %+v", body)
		}
		w.Write([]byte(`{"id":5,"username":"newbie","role":"ROLE_MODERATOR"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	user, err := client.CreateUser(context.Background(), "newbie", "secret", "ROLE_MODERATOR")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID != 5 || user.Username != "newbie" {
		t.Errorf("user = %+v", user)
	}
}

func TestDeleteHandles204(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	if err := client.DeleteTask(context.Background(), 9); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
}

func TestLoginReturnsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"token":"jwt-token"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	resp, err := client.Login(context.Background(), "maria", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token != "jwt-token" {
		t.Errorf("Token = %q", resp.Token)
	}
}

func TestCreateProjectRejectsEmptyName(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", nil)
	if _, err := client.CreateProject(context.Background(), "   ", "desc"); err == nil {
		t.Fatal("expected validation error before any request")
	}
}
