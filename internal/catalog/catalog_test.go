package catalog

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"franchise-engine/internal/domain"
)

const flatDoc = `[
  {"id": 1, "name": "Alpha Pizza", "category": "Food", "minInvestment": "$20,000", "avgInvestment": "$50,000", "outlets": "30"},
  {"id": "2", "name": "Beta Fitness", "category": "Fitness", "minInvestment": "$10,000", "avgInvestment": "$80,000", "outlets": "120+ outlets", "financing": true, "year": 2009}
]`

const sectionedDoc = `{
  "leading": [{"id": 10, "name": "Lead"}],
  "opportunities": [{"id": 11, "name": "Opp A"}, {"id": 12, "name": "Opp B", "coaching": "yes"}]
}`

func TestDecodeFlatArray(t *testing.T) {
	got, err := Decode([]byte(flatDoc))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.Text("1"), got[0].ID)
	assert.Equal(t, domain.Text("2"), got[1].ID)
	assert.Equal(t, domain.Text("2009"), got[1].Year)
	assert.True(t, bool(got[1].Financing))
	assert.Equal(t, "", got[0].Description)
}

func TestDecodeSectioned(t *testing.T) {
	got, err := Decode([]byte(sectionedDoc))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Lead", got[0].Name)
	assert.Equal(t, "Opp B", got[2].Name)
	assert.Equal(t, "Yes", got[2].Coaching.YesNo())
}

func TestDecodeNumericInvestmentFields(t *testing.T) {
	got, err := Decode([]byte(`[{"id": 3, "name": "Gamma", "minInvestment": 25000, "avgInvestment": null, "outlets": 120}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.Text("25000"), got[0].MinInvestment)
	assert.Equal(t, domain.Text(""), got[0].AvgInvestment)
	assert.Equal(t, domain.Text("120"), got[0].Outlets)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("   "))
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = Decode([]byte("<html>not found</html>"))
	assert.Error(t, err)

	_, err = Decode([]byte(`[{"id": 1,`))
	assert.Error(t, err)
}

func TestLoaderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "franchises.json")
	require.NoError(t, os.WriteFile(path, []byte(flatDoc), 0o644))

	l := NewLoader(path, time.Second)
	got, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.False(t, l.LoadedAt().IsZero())

	// cached copy survives the file going away
	require.NoError(t, os.Remove(path))
	again, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, again)

	// a failed refresh keeps the old copy
	_, err = l.Refresh(context.Background())
	var le *LoadError
	require.ErrorAs(t, err, &le)
	again, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, again, 2)
}

func TestLoaderFromHTTPSingleAttempt(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := NewLoader(srv.URL+"/franchises.json", time.Second)
	_, err := l.Load(context.Background())

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, srv.URL+"/franchises.json", le.Source)
	assert.EqualValues(t, 1, hits.Load(), "no retry")
}

func TestLoaderFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sectionedDoc))
	}))
	defer srv.Close()

	got, err := NewLoader(srv.URL, time.Second).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestLoaderMissingSource(t *testing.T) {
	_, err := NewLoader("", time.Second).Load(context.Background())
	assert.True(t, errors.Is(err, ErrEmptySource))
}

func TestStoreSnapshotIsFrozen(t *testing.T) {
	listings, err := Decode([]byte(flatDoc))
	require.NoError(t, err)

	s := NewStore(listings)
	n := s.AppendBatch([]domain.Listing{listings[0]})
	assert.Equal(t, 3, n)
	assert.Len(t, s.All(), 3, "append does not dedupe")
	assert.Len(t, s.OriginalOrder(), 2)

	all := s.All()
	all[0].Name = "mutated"
	assert.Equal(t, "Alpha Pizza", s.All()[0].Name)

	listings[1].Name = "mutated"
	assert.Equal(t, "Beta Fitness", s.OriginalOrder()[1].Name)
}

func TestStoreFind(t *testing.T) {
	listings, err := Decode([]byte(flatDoc))
	require.NoError(t, err)
	s := NewStore(listings)

	l, ok := s.Find("2")
	require.True(t, ok)
	assert.Equal(t, "Beta Fitness", l.Name)

	l, ok = s.Find("404")
	require.True(t, ok)
	assert.Equal(t, "Alpha Pizza", l.Name, "unknown id falls back to the first listing")

	_, ok = NewStore(nil).Find("1")
	assert.False(t, ok)
}

func TestStoreRecommend(t *testing.T) {
	listings, err := Decode([]byte(sectionedDoc))
	require.NoError(t, err)
	s := NewStore(listings)

	got := s.Recommend("10", 4, rand.New(rand.NewPCG(1, 2)))
	assert.Len(t, got, 2)
	for _, l := range got {
		assert.NotEqual(t, domain.Text("10"), l.ID)
	}
	assert.Len(t, s.Recommend("10", 1, nil), 1)
}

func TestStoreCategories(t *testing.T) {
	s := NewStore([]domain.Listing{
		{Category: "Food"}, {Category: "fitness"}, {Category: "FOOD"}, {Category: " "}, {Category: "Fitness"},
	})
	assert.Equal(t, []string{"Food", "fitness"}, s.Categories())
}
