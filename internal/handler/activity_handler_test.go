package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mergington-be/internal/domain"
	"mergington-be/internal/repository"
	"mergington-be/internal/service"
	"mergington-be/pkg/database"
	"mergington-be/pkg/logger"
)

func setupActivityRouter(t *testing.T) http.Handler {
	t.Helper()
	return setupActivityRouterWithSeeds(t, domain.DefaultSeed)
}

func setupActivityRouterWithSeeds(t *testing.T, seeds []domain.SeedActivity) http.Handler {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLiteDB(ctx, database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewSQLiteActivityRepository(db)
	_, err = service.Bootstrap(ctx, repo, seeds, zap.NewNop())
	require.NoError(t, err)

	services := &service.Services{
		Directory:    service.NewDirectoryService(repo, zap.NewNop()),
		Registration: service.NewRegistrationService(repo, service.NewLocalLocker(), zap.NewNop()),
	}

	r := chi.NewRouter()
	r.Route("/activities", NewActivityHandler(services, logger.NewNop()).Routes)
	return r
}

func activityPath(name, action, email string) string {
	p := "/activities/" + url.PathEscape(name) + "/" + action
	if email != "" {
		p += "?email=" + url.QueryEscape(email)
	}
	return p
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func TestListActivitiesEndpoint(t *testing.T) {
	h := setupActivityRouter(t)

	rec, body := do(t, h, http.MethodGet, "/activities")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Len(t, body, 9)

	chess, ok := body["Chess Club"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Fridays, 3:30 PM - 5:00 PM", chess["schedule"])
	assert.Equal(t, float64(12), chess["max_participants"])
	assert.Equal(t, []interface{}{"michael@mergington.edu", "daniel@mergington.edu"}, chess["participants"])
}

func TestGetActivityEndpoint(t *testing.T) {
	h := setupActivityRouter(t)

	rec, body := do(t, h, http.MethodGet, "/activities/"+url.PathEscape("Math Club"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(10), body["max_participants"])

	rec, body = do(t, h, http.MethodGet, "/activities/Knitting")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Activity not found", body["detail"])
}

func TestSignUpEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		activity   string
		email      string
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{
			name:       "success",
			activity:   "Chess Club",
			email:      "new@school.edu",
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantValue:  "Signed up new@school.edu for Chess Club",
		},
		{
			name:       "already registered",
			activity:   "Chess Club",
			email:      "michael@mergington.edu",
			wantStatus: http.StatusBadRequest,
			wantKey:    "detail",
			wantValue:  "Student is already signed up",
		},
		{
			name:       "unknown activity",
			activity:   "Knitting",
			email:      "new@school.edu",
			wantStatus: http.StatusNotFound,
			wantKey:    "detail",
			wantValue:  "Activity not found",
		},
		{
			name:       "missing email",
			activity:   "Chess Club",
			wantStatus: http.StatusUnprocessableEntity,
			wantKey:    "type",
			wantValue:  "validation",
		},
		{
			name:       "email that is not an address",
			activity:   "Chess Club",
			email:      "student42",
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantValue:  "Signed up student42 for Chess Club",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupActivityRouter(t)

			rec, body := do(t, h, http.MethodPost, activityPath(tt.activity, "signup", tt.email))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantValue, body[tt.wantKey])
		})
	}
}

func TestSignUpEndpointFull(t *testing.T) {
	h := setupActivityRouter(t)

	// Math Club holds 10 and is seeded with 2
	for i := 0; i < 8; i++ {
		rec, _ := do(t, h, http.MethodPost, activityPath("Math Club", "signup", string(rune('a'+i))+"@school.edu"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, body := do(t, h, http.MethodPost, activityPath("Math Club", "signup", "late@school.edu"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Activity is full", body["detail"])
	assert.Equal(t, "activity_full", body["type"])
}

func TestUnregisterEndpoint(t *testing.T) {
	h := setupActivityRouter(t)

	rec, body := do(t, h, http.MethodDelete, activityPath("Chess Club", "unregister", "michael@mergington.edu"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Unregistered michael@mergington.edu from Chess Club", body["message"])

	rec, body = do(t, h, http.MethodDelete, activityPath("Chess Club", "unregister", "michael@mergington.edu"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Student is not signed up for this activity", body["detail"])

	rec, _ = do(t, h, http.MethodDelete, activityPath("Knitting", "unregister", "michael@mergington.edu"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, activityPath("Chess Club", "unregister", ""))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	_, list := do(t, h, http.MethodGet, "/activities")
	chess := list["Chess Club"].(map[string]interface{})
	assert.Equal(t, []interface{}{"daniel@mergington.edu"}, chess["participants"])
}

type brokenDirectory struct{}

func (brokenDirectory) ListActivities(context.Context) (domain.ActivityDirectory, error) {
	return nil, errors.New("no such table: activities")
}

func (brokenDirectory) GetActivity(context.Context, string) (*domain.ActivityDetails, error) {
	return nil, errors.New("no such table: activities")
}

func TestListActivitiesEndpointHidesInternalErrors(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/activities", NewActivityHandler(&service.Services{Directory: brokenDirectory{}}, logger.NewNop()).Routes)

	rec, body := do(t, r, http.MethodGet, "/activities")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["detail"])
	assert.NotContains(t, rec.Body.String(), "no such table")
}

func TestActivityNameDecoding(t *testing.T) {
	h := setupActivityRouterWithSeeds(t, []domain.SeedActivity{
		{Activity: domain.Activity{Name: "Club %41", Description: "literal", Schedule: "s", MaxParticipants: 5}},
		{Activity: domain.Activity{Name: "Club A", Description: "letter", Schedule: "s", MaxParticipants: 5}},
		{Activity: domain.Activity{Name: "Arts/Crafts", Description: "slash", Schedule: "s", MaxParticipants: 5}},
	})

	tests := []struct {
		name     string
		target   string
		wantDesc string
	}{
		{"percent sequence is decoded once", "/activities/Club%20%2541", "literal"},
		{"plain escape", "/activities/Club%20A", "letter"},
		{"escaped slash stays in the segment", "/activities/Arts%2FCrafts", "slash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantDesc, body["description"])
		})
	}

	rec, body := do(t, h, http.MethodPost, "/activities/Club%20%2541/signup?email=new@school.edu")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Signed up new@school.edu for Club %41", body["message"])
}
