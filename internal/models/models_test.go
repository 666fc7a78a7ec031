package models

import (
	"encoding/json"
	"testing"
)

func TestPlanRef(t *testing.T) {
	tc := []struct {
		name     string
		data     string
		wantID   int
		wantPlan bool
		wantErr  bool
	}{
		{name: "null", data: `null`, wantID: 0},
		{name: "bare id", data: `3`, wantID: 3},
		{name: "quoted id", data: `"2"`, wantID: 2},
		{name: "expanded object", data: `{"id":1,"name":"Basic","price":"7.99","max_screens":1,"video_quality":"SD"}`, wantID: 1, wantPlan: true},
		{name: "garbage", data: `"premium"`, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			var ref PlanRef
			err := json.Unmarshal([]byte(tt.data), &ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if ref.ID != tt.wantID {
				t.Errorf("expected id %d, got %d", tt.wantID, ref.ID)
			}
			if (ref.Plan != nil) != tt.wantPlan {
				t.Errorf("expected expanded plan = %v, got %v", tt.wantPlan, ref.Plan)
			}
		})
	}

	t.Run("marshals as id", func(t *testing.T) {
		data, err := json.Marshal(struct {
			Plan PlanRef `json:"plan"`
		}{PlanRef{ID: 2, Plan: &Plan{ID: 2, Name: "Standard"}}})
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if string(data) != `{"plan":2}` {
			t.Errorf("unexpected JSON %s", data)
		}
	})
}

func TestUser_DisplayName(t *testing.T) {
	if got := (&User{Username: "ana", FirstName: "Ana", LastName: "Gómez"}).DisplayName(); got != "Ana Gómez" {
		t.Errorf("unexpected display name %q", got)
	}
	if got := (&User{Username: "ana"}).DisplayName(); got != "ana" {
		t.Errorf("expected username fallback, got %q", got)
	}
	var nilUser *User
	if got := nilUser.DisplayName(); got != "" {
		t.Errorf("expected empty name for nil user, got %q", got)
	}
}

func TestTarget_Progress(t *testing.T) {
	t.Run("content only", func(t *testing.T) {
		update := Target{ContentID: 7}.Progress(30, 120)

		if update.Content == nil || *update.Content != 7 {
			t.Errorf("expected content 7, got %v", update.Content)
		}
		if update.Episode != nil {
			t.Errorf("expected nil episode, got %v", *update.Episode)
		}
	})

	t.Run("episode takes precedence", func(t *testing.T) {
		update := Target{ContentID: 7, EpisodeID: 42}.Progress(30, 120)

		if update.Episode == nil || *update.Episode != 42 {
			t.Errorf("expected episode 42, got %v", update.Episode)
		}
		if update.Content != nil {
			t.Errorf("expected nil content, got %v", *update.Content)
		}

		data, err := json.Marshal(update)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		want := `{"content":null,"episode":42,"watched_time":30,"total_duration":120}`
		if string(data) != want {
			t.Errorf("expected %s, got %s", want, data)
		}
	})
}

func TestDecodeList(t *testing.T) {
	t.Run("page envelope", func(t *testing.T) {
		page, err := DecodeList[Content]([]byte(`{"count":2,"next":"http://x/?page=2","previous":null,"results":[{"id":1},{"id":2}]}`))
		if err != nil {
			t.Fatalf("DecodeList() error = %v", err)
		}
		if page.Count != 2 || len(page.Results) != 2 {
			t.Errorf("unexpected page %+v", page)
		}
		if !page.HasNext() {
			t.Error("expected HasNext")
		}
	})

	t.Run("bare array", func(t *testing.T) {
		page, err := DecodeList[Content]([]byte(` [{"id":5}] `))
		if err != nil {
			t.Fatalf("DecodeList() error = %v", err)
		}
		if page.Count != 1 || page.Results[0].ID != 5 {
			t.Errorf("unexpected page %+v", page)
		}
		if page.HasNext() {
			t.Error("bare arrays have no next page")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		page, err := DecodeList[Content](nil)
		if err != nil {
			t.Fatalf("DecodeList() error = %v", err)
		}
		if page.Results == nil {
			t.Error("expected non-nil results")
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		if _, err := DecodeList[Content]([]byte(`{"results":`)); err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestContent_Episode(t *testing.T) {
	c := Content{Episodes: []Episode{{ID: 1, SeasonNumber: 1, EpisodeNumber: 2, Duration: 45}}}

	ep, ok := c.Episode(1)
	if !ok {
		t.Fatal("expected episode to be found")
	}
	if ep.Code() != "S01E02" {
		t.Errorf("unexpected code %s", ep.Code())
	}
	if ep.DurationSeconds() != 2700 {
		t.Errorf("unexpected duration %v", ep.DurationSeconds())
	}
	if _, ok := c.Episode(99); ok {
		t.Error("expected missing episode")
	}
}
