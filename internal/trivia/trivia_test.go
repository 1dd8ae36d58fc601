package trivia

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleResponse = `{"response_code":0,"results":[
	{"type":"multiple","difficulty":"easy","category":"Science &amp; Nature","question":"What is H&lt;sub&gt;2&lt;/sub&gt;O?","correct_answer":"Water","incorrect_answers":["Salt","Air","Fire"]},
	{"type":"boolean","difficulty":"hard","category":"History","question":"Rome fell in 476?","correct_answer":"True","incorrect_answers":["False"]}
]}`

func TestFetchQuestions(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api.php" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	questions, err := client.FetchQuestions(context.Background(), Params{Amount: 2, Category: 9, Difficulty: "easy"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].CorrectAnswer != "Water" || len(questions[0].IncorrectAnswers) != 3 {
		t.Fatalf("unexpected first question: %+v", questions[0])
	}
	if questions[0].Category != "Science &amp; Nature" {
		t.Fatalf("client must not decode entities, got %q", questions[0].Category)
	}
	for _, part := range []string{"amount=2", "category=9", "difficulty=easy"} {
		if !strings.Contains(gotQuery, part) {
			t.Fatalf("query %q missing %q", gotQuery, part)
		}
	}
}

func TestFetchQuestionsDefaultsAmount(t *testing.T) {
	q := Params{}.Query()
	if q.Get("amount") != "15" {
		t.Fatalf("expected default amount 15, got %q", q.Get("amount"))
	}
	if q.Has("category") || q.Has("difficulty") || q.Has("type") {
		t.Fatalf("expected optional params omitted, got %v", q)
	}
}

func TestFetchQuestionsResponseCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response_code":1,"results":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).FetchQuestions(context.Background(), Params{Amount: 50})
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected ResponseError, got %v", err)
	}
	if respErr.Code != 1 {
		t.Fatalf("expected code 1, got %d", respErr.Code)
	}
}

func TestFetchQuestionsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second).FetchQuestions(context.Background(), Params{}); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestFetchQuestionsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).FetchQuestions(context.Background(), Params{})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestDecodeResponseRejectsMalformedQuestion(t *testing.T) {
	body := `{"response_code":0,"results":[{"question":"ok","correct_answer":"a"},{"question":"  ","correct_answer":"b"}]}`
	_, err := DecodeResponse(strings.NewReader(body))
	if !errors.Is(err, ErrMalformedQuestion) {
		t.Fatalf("expected ErrMalformedQuestion, got %v", err)
	}
}

func TestCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api_category.php" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"trivia_categories":[{"id":9,"name":"General Knowledge"},{"id":10,"name":"Entertainment: Books"}]}`))
	}))
	defer srv.Close()

	cats, err := NewClient(srv.URL+"/", time.Second).Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 2 || cats[0].ID != 9 || cats[1].Name != "Entertainment: Books" {
		t.Fatalf("unexpected categories: %+v", cats)
	}
}
