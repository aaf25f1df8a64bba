package inmemorycache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/w920801-a11y/climate-try/internal/inmemorycache"
	"github.com/w920801-a11y/climate-try/internal/weather"
)

type InMemoryCacheTestSuite struct {
	suite.Suite
	cacheProvider *inmemorycache.InMemoryCache
}

func (s *InMemoryCacheTestSuite) SetupTest() {
	s.cacheProvider = inmemorycache.NewInMemoryCacheProvider(100 * time.Millisecond)
}

func (s *InMemoryCacheTestSuite) TestGetNonExistentKey() {
	value, exists, err := s.cacheProvider.Get("name:nonexistent")

	s.NoError(err)
	s.False(exists)
	s.Nil(value)
}

func (s *InMemoryCacheTestSuite) TestSetAndGetSnapshot() {
	key := "name:paris"
	snapshot := &weather.Snapshot{
		LocationName: "Paris",
		Current:      weather.Current{Temp: 22.5, Condition: "clear", Humidity: 55, WindSpeed: 9, FeelsLike: 23, UVIndex: 5},
		IsRealtime:   true,
		Sources:      []weather.Source{{Title: "Météo-France", URI: "https://meteofrance.com"}},
	}

	err := s.cacheProvider.Set(key, &inmemorycache.SnapshotCacheData{Snapshot: snapshot}, 5*time.Minute)
	s.NoError(err)

	value, exists, err := s.cacheProvider.Get(key)
	s.NoError(err)
	s.True(exists)
	s.Require().NotNil(value)
	s.Require().NotNil(value.Snapshot)
	s.Equal("Paris", value.Snapshot.LocationName)
	s.Equal(22.5, value.Snapshot.Current.Temp)
	s.True(value.Snapshot.IsRealtime)
	s.Len(value.Snapshot.Sources, 1)
	s.Empty(value.Error)
}

func (s *InMemoryCacheTestSuite) TestSetAndGetFailureEntry() {
	key := "name:atlantis"
	errMsg := "oracle returned status 503"

	err := s.cacheProvider.Set(key, &inmemorycache.SnapshotCacheData{Error: errMsg}, time.Minute)
	s.NoError(err)

	value, exists, err := s.cacheProvider.Get(key)
	s.NoError(err)
	s.True(exists)
	s.Require().NotNil(value)
	s.Nil(value.Snapshot)
	s.Equal(errMsg, value.Error)
}

func (s *InMemoryCacheTestSuite) TestExpiration() {
	key := "name:berlin"

	err := s.cacheProvider.Set(key, &inmemorycache.SnapshotCacheData{
		Snapshot: &weather.Snapshot{LocationName: "Berlin"},
	}, 50*time.Millisecond)
	s.NoError(err)

	time.Sleep(80 * time.Millisecond)

	value, exists, err := s.cacheProvider.Get(key)
	s.NoError(err)
	s.False(exists)
	s.Nil(value)
}

func (s *InMemoryCacheTestSuite) TestOverwriteEntry() {
	key := "name:oslo"

	s.NoError(s.cacheProvider.Set(key, &inmemorycache.SnapshotCacheData{Error: "boom"}, time.Minute))
	s.NoError(s.cacheProvider.Set(key, &inmemorycache.SnapshotCacheData{
		Snapshot: &weather.Snapshot{LocationName: "Oslo"},
	}, time.Minute))

	value, exists, err := s.cacheProvider.Get(key)
	s.NoError(err)
	s.True(exists)
	s.Require().NotNil(value.Snapshot)
	s.Equal("Oslo", value.Snapshot.LocationName)
	s.Empty(value.Error)
}

func TestInMemoryCacheSuite(t *testing.T) {
	suite.Run(t, new(InMemoryCacheTestSuite))
}
