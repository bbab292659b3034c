package review_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/review"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/review/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session"
	userentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

type fakeStore struct {
	reviews   map[int64]*entity.Review
	getErr    error
	deleteErr error
	deleted   []int64
	created   []review.CreateInput
	createErr error
}

func (f *fakeStore) List(ctx context.Context, pointID int64) ([]*entity.Review, error) {
	out := []*entity.Review{}
	for _, rv := range f.reviews {
		if rv.CollectionPointID == pointID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*entity.Review, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rv, ok := f.reviews[id]
	if !ok {
		return nil, fmt.Errorf("%w: review %d", utilities.ErrNotFound, id)
	}
	return rv, nil
}

func (f *fakeStore) Create(ctx context.Context, in review.CreateInput) (*entity.Review, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, in)
	return &entity.Review{ID: 1, UserID: in.UserID, CollectionPointID: in.CollectionPointID, Rating: in.Rating}, nil
}

func (f *fakeStore) Delete(ctx context.Context, rv *entity.Review) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, rv.ID)
	delete(f.reviews, rv.ID)
	return nil
}

func newStore() *fakeStore {
	return &fakeStore{reviews: map[int64]*entity.Review{
		5: {ID: 5, UserID: 10, CollectionPointID: 3, Rating: 4},
	}}
}

func deleteRequest(id string, s *session.Session) *http.Request {
	r := httptest.NewRequest(http.MethodDelete, "/api/reviews/"+id, nil)
	r.SetPathValue("id", id)
	if s != nil {
		r = r.WithContext(session.WithSession(r.Context(), s))
	}
	return r
}

func TestDeleteReviewChecks(t *testing.T) {
	client := &session.Session{UserID: 10, Role: userentity.RoleClient}
	otherClient := &session.Session{UserID: 11, Role: userentity.RoleClient}

	cases := []struct {
		name     string
		id       string
		session  *session.Session
		store    func() *fakeStore
		wantCode int
		wantBody string
	}{
		{"no session", "5", nil, newStore, http.StatusUnauthorized, `{"error":"User not authenticated"}`},
		{"no session wins over bad id", "abc", nil, newStore, http.StatusUnauthorized, `{"error":"User not authenticated"}`},
		{"operator", "5", &session.Session{UserID: 10, Role: userentity.RoleOperator}, newStore, http.StatusForbidden, `{"error":"User not authorized"}`},
		{"admin", "5", &session.Session{UserID: 1, Role: userentity.RoleAdmin}, newStore, http.StatusForbidden, `{"error":"User not authorized"}`},
		{"role check wins over bad id", "abc", &session.Session{UserID: 10, Role: userentity.RoleUser}, newStore, http.StatusForbidden, `{"error":"User not authorized"}`},
		{"non numeric id", "abc", client, newStore, http.StatusBadRequest, `{"error":"Invalid ID"}`},
		{"missing review", "999", client, newStore, http.StatusNotFound, `{"error":"Review not found"}`},
		{"not the author", "5", otherClient, newStore, http.StatusForbidden, `{"error":"Not authorized to delete this review"}`},
		{"lookup failure", "5", client, func() *fakeStore {
			s := newStore()
			s.getErr = errors.New("connection reset")
			return s
		}, http.StatusInternalServerError, `{"error":"Failed to delete review"}`},
		{"delete failure", "5", client, func() *fakeStore {
			s := newStore()
			s.deleteErr = errors.New("deadlock detected")
			return s
		}, http.StatusInternalServerError, `{"error":"Failed to delete review"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := c.store()
			h := review.NewHandler(store, zap.NewNop().Sugar())
			rec := httptest.NewRecorder()
			h.Delete(rec, deleteRequest(c.id, c.session))

			assert.Equal(t, c.wantCode, rec.Code)
			assert.JSONEq(t, c.wantBody, rec.Body.String())
			assert.Empty(t, store.deleted)
		})
	}
}

func TestDeleteReviewByAuthor(t *testing.T) {
	store := newStore()
	h := review.NewHandler(store, zap.NewNop().Sugar())
	rec := httptest.NewRecorder()

	h.Delete(rec, deleteRequest("5", &session.Session{UserID: 10, Role: userentity.RoleClient}))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, []int64{5}, store.deleted)
}

func TestCreateReview(t *testing.T) {
	ctxFor := func(r *http.Request, s *session.Session) *http.Request {
		return r.WithContext(session.WithSession(r.Context(), s))
	}

	t.Run("client", func(t *testing.T) {
		store := newStore()
		h := review.NewHandler(store, zap.NewNop().Sugar())
		r := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{"collectionPointId":"3","rating":5,"comment":"ottimo"}`))
		rec := httptest.NewRecorder()
		h.Create(rec, ctxFor(r, &session.Session{UserID: 12, Role: userentity.RoleClient}))

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, store.created, 1)
		assert.Equal(t, int64(3), store.created[0].CollectionPointID)
		assert.Equal(t, int64(12), store.created[0].UserID)
	})

	t.Run("rating out of range", func(t *testing.T) {
		store := newStore()
		h := review.NewHandler(store, zap.NewNop().Sugar())
		r := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{"collectionPointId":"3","rating":6}`))
		rec := httptest.NewRecorder()
		h.Create(rec, ctxFor(r, &session.Session{UserID: 12, Role: userentity.RoleClient}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, store.created)
	})

	t.Run("duplicate", func(t *testing.T) {
		store := newStore()
		store.createErr = fmt.Errorf("%w: already reviewed", utilities.ErrConflict)
		h := review.NewHandler(store, zap.NewNop().Sugar())
		r := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{"collectionPointId":"3","rating":2}`))
		rec := httptest.NewRecorder()
		h.Create(rec, ctxFor(r, &session.Session{UserID: 10, Role: userentity.RoleClient}))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("plain user", func(t *testing.T) {
		h := review.NewHandler(newStore(), zap.NewNop().Sugar())
		r := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{"collectionPointId":"3","rating":2}`))
		rec := httptest.NewRecorder()
		h.Create(rec, ctxFor(r, &session.Session{UserID: 10, Role: userentity.RoleUser}))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestListReviewsNeedsPoint(t *testing.T) {
	h := review.NewHandler(newStore(), zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/reviews", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/reviews?collectionPointId=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"5"`)
}
