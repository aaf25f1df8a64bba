package orchestrator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/w920801-a11y/climate-try/internal/mocks"
	"github.com/w920801-a11y/climate-try/internal/oracle"
	"github.com/w920801-a11y/climate-try/internal/orchestrator"
	"github.com/w920801-a11y/climate-try/internal/weather"
)

const taipeiReply = `{
	"locationName": "台北市",
	"current": {"temp": 28, "condition": "晴", "humidity": 60, "windSpeed": 10, "feelsLike": 30, "uvIndex": 8},
	"forecast": [
		{"date": "2026-08-31", "high": 32, "low": 26, "condition": "晴"},
		{"date": "2026-09-01", "high": 31, "low": 26, "condition": "多雲"},
		{"date": "2026-09-02", "high": 30, "low": 25, "condition": "陣雨"},
		{"date": "2026-09-03", "high": 31, "low": 25, "condition": "多雲"},
		{"date": "2026-09-04", "high": 32, "low": 26, "condition": "晴"}
	],
	"aiInsight": "典型的夏末天氣，午後留意雷陣雨。",
	"clothingAdvice": "輕薄透氣的衣物，並攜帶折傘。",
	"activityAdvice": "適合清晨或傍晚的戶外活動。"
}`

func searchRequest() interface{} {
	return mock.MatchedBy(func(req oracle.GenerateRequest) bool { return req.EnableSearch })
}

func noSearchRequest() interface{} {
	return mock.MatchedBy(func(req oracle.GenerateRequest) bool { return !req.EnableSearch })
}

type OrchestratorTestSuite struct {
	suite.Suite
	mockClient *mocks.MockClient
	ctx        context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.mockClient = mocks.NewMockClient(s.T())
	s.ctx = context.Background()
}

func (s *OrchestratorTestSuite) newOrchestrator(maxRetries int, backoff time.Duration) orchestrator.Orchestrator {
	return orchestrator.NewOrchestrator(s.mockClient, maxRetries, backoff)
}

func taipei() weather.Location {
	lat, lon := 25.03, 121.56
	return weather.Location{Lat: &lat, Lon: &lon}
}

func (s *OrchestratorTestSuite) TestMissingCredentialFailsWithoutNetworkCall() {
	s.mockClient.On("Configured").Return(false)

	orch := s.newOrchestrator(2, time.Millisecond)
	snapshot, err := orch.FetchWeather(s.ctx, taipei(), true)

	s.Nil(snapshot)
	s.ErrorIs(err, orchestrator.ErrCredentialMissing)
	s.mockClient.AssertNotCalled(s.T(), "GenerateContent")
}

func (s *OrchestratorTestSuite) TestGroundedReplyRoundTrip() {
	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, searchRequest()).Return(&oracle.GenerateResult{
		Text: taipeiReply,
		Grounding: []oracle.GroundingChunk{
			{Web: &oracle.WebSource{URI: "https://www.cwa.gov.tw/", Title: "中央氣象署"}},
		},
	}, nil).Once()

	orch := s.newOrchestrator(2, time.Millisecond)
	snapshot, err := orch.FetchWeather(s.ctx, taipei(), true)

	s.NoError(err)
	s.Require().NotNil(snapshot)
	s.Equal("台北市", snapshot.LocationName)
	s.Equal(28.0, snapshot.Current.Temp)
	s.Equal("晴", snapshot.Current.Condition)
	s.Equal(60.0, snapshot.Current.Humidity)
	s.Equal(10.0, snapshot.Current.WindSpeed)
	s.Equal(30.0, snapshot.Current.FeelsLike)
	s.Equal(8.0, snapshot.Current.UVIndex)
	s.Len(snapshot.Forecast, 5)
	s.Equal("2026-08-31", snapshot.Forecast[0].Date)
	s.Equal("2026-09-04", snapshot.Forecast[4].Date)
	s.True(snapshot.IsRealtime)
	s.Require().Len(snapshot.Sources, 1)
	s.Equal("中央氣象署", snapshot.Sources[0].Title)
	s.Equal("https://www.cwa.gov.tw/", snapshot.Sources[0].URI)
	s.NotEmpty(snapshot.LastUpdated)
}

func (s *OrchestratorTestSuite) TestRealtimeFalseWithoutSources() {
	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, searchRequest()).
		Return(&oracle.GenerateResult{Text: taipeiReply}, nil).Once()

	orch := s.newOrchestrator(2, time.Millisecond)
	snapshot, err := orch.FetchWeather(s.ctx, taipei(), true)

	s.NoError(err)
	s.False(snapshot.IsRealtime)
	s.Empty(snapshot.Sources)
}

func (s *OrchestratorTestSuite) TestSourcePlaceholdersForBareChunks() {
	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, searchRequest()).Return(&oracle.GenerateResult{
		Text:      taipeiReply,
		Grounding: []oracle.GroundingChunk{{Web: nil}, {Web: &oracle.WebSource{URI: "https://example.com"}}},
	}, nil).Once()

	orch := s.newOrchestrator(0, time.Millisecond)
	snapshot, err := orch.FetchWeather(s.ctx, taipei(), true)

	s.NoError(err)
	s.Require().Len(snapshot.Sources, 2)
	s.Equal("Unknown source", snapshot.Sources[0].Title)
	s.Equal("#", snapshot.Sources[0].URI)
	s.Equal("Unknown source", snapshot.Sources[1].Title)
	s.Equal("https://example.com", snapshot.Sources[1].URI)
}

func (s *OrchestratorTestSuite) TestFencedReplyParses() {
	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, searchRequest()).
		Return(&oracle.GenerateResult{Text: "```json\n" + taipeiReply + "\n```"}, nil).Once()

	orch := s.newOrchestrator(0, time.Millisecond)
	snapshot, err := orch.FetchWeather(s.ctx, taipei(), true)

	s.NoError(err)
	s.Equal("台北市", snapshot.LocationName)
}

func (s *OrchestratorTestSuite) TestSearchFailureDowngradesWithoutBackoff() {
	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, searchRequest()).
		Return(nil, errors.New("oracle API error 429 (RESOURCE_EXHAUSTED): search quota exceeded")).Once()
	s.mockClient.On("GenerateContent", mock.Anything, noSearchRequest()).
		Return(&oracle.GenerateResult{Text: taipeiReply}, nil).Once()

	// a long backoff would make the test hang if the downgrade path ever
	// started waiting
	orch := s.newOrchestrator(2, 10*time.Second)

	start := time.Now()
	snapshot, err := orch.FetchWeather(s.ctx, taipei(), true)

	s.NoError(err)
	s.NotNil(snapshot)
	s.False(snapshot.IsRealtime)
	s.Less(time.Since(start), 2*time.Second)
	s.mockClient.AssertNumberOfCalls(s.T(), "GenerateContent", 2)
}

func (s *OrchestratorTestSuite) TestEmptyReplyAlsoDowngrades() {
	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, searchRequest()).
		Return(&oracle.GenerateResult{Text: "   "}, nil).Once()
	s.mockClient.On("GenerateContent", mock.Anything, noSearchRequest()).
		Return(&oracle.GenerateResult{Text: taipeiReply}, nil).Once()

	orch := s.newOrchestrator(0, time.Millisecond)
	snapshot, err := orch.FetchWeather(s.ctx, taipei(), true)

	s.NoError(err)
	s.Equal("台北市", snapshot.LocationName)
}

func (s *OrchestratorTestSuite) TestRetryBudgetBoundsNonSearchAttempts() {
	oracleErr := errors.New("oracle API error 500 (INTERNAL): something broke")

	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, noSearchRequest()).Return(nil, oracleErr).Twice()

	orch := s.newOrchestrator(1, time.Millisecond)
	snapshot, err := orch.FetchWeather(s.ctx, weather.Location{Name: "Reykjavik"}, false)

	s.Nil(snapshot)
	s.EqualError(err, oracleErr.Error())
	s.mockClient.AssertNumberOfCalls(s.T(), "GenerateContent", 2)
}

func (s *OrchestratorTestSuite) TestPersistentFailureAfterDowngrade() {
	oracleErr := errors.New("oracle returned status 503")

	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, searchRequest()).Return(nil, oracleErr).Once()
	s.mockClient.On("GenerateContent", mock.Anything, noSearchRequest()).Return(nil, oracleErr).Times(2)

	orch := s.newOrchestrator(1, time.Millisecond)
	snapshot, err := orch.FetchWeather(s.ctx, weather.Location{Name: "Reykjavik"}, true)

	s.Nil(snapshot)
	s.EqualError(err, oracleErr.Error())
	// 1 search attempt + initial non-search + 1 budgeted retry
	s.mockClient.AssertNumberOfCalls(s.T(), "GenerateContent", 3)
}

func (s *OrchestratorTestSuite) TestUnparsableReplyPropagatesAfterBudget() {
	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, noSearchRequest()).
		Return(&oracle.GenerateResult{Text: "not json at all"}, nil).Once()

	orch := s.newOrchestrator(0, time.Millisecond)
	snapshot, err := orch.FetchWeather(s.ctx, weather.Location{Name: "Oslo"}, false)

	s.Nil(snapshot)
	s.Error(err)
	s.Contains(err.Error(), "not valid JSON")
}

func (s *OrchestratorTestSuite) TestNonSearchAttemptRequestsStructuredOutput() {
	var captured oracle.GenerateRequest

	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, noSearchRequest()).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(oracle.GenerateRequest)
		}).
		Return(&oracle.GenerateResult{Text: taipeiReply}, nil).Once()

	orch := s.newOrchestrator(0, time.Millisecond)
	_, err := orch.FetchWeather(s.ctx, weather.Location{Name: "Oslo"}, false)

	s.NoError(err)
	s.True(captured.JSONOutput)
	s.NotEmpty(captured.Schema)
	s.Contains(captured.Prompt, "prediction")
}

func (s *OrchestratorTestSuite) TestSearchAttemptSkipsStructuredOutput() {
	var captured oracle.GenerateRequest

	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, searchRequest()).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(oracle.GenerateRequest)
		}).
		Return(&oracle.GenerateResult{Text: taipeiReply}, nil).Once()

	orch := s.newOrchestrator(0, time.Millisecond)
	_, err := orch.FetchWeather(s.ctx, weather.Location{Name: "Oslo"}, true)

	s.NoError(err)
	s.False(captured.JSONOutput)
	s.Empty(captured.Schema)
	s.Contains(captured.Prompt, "Search the web")
}

func (s *OrchestratorTestSuite) TestConnectionProbeMissingCredential() {
	s.mockClient.On("Configured").Return(false)

	orch := s.newOrchestrator(0, time.Millisecond)

	s.False(orch.TestOracleConnection(s.ctx))
	s.mockClient.AssertNotCalled(s.T(), "GenerateContent")
}

func (s *OrchestratorTestSuite) TestConnectionProbeNetworkFailure() {
	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, mock.Anything).
		Return(nil, errors.New("oracle request failed: connection refused")).Once()

	orch := s.newOrchestrator(0, time.Millisecond)

	s.False(orch.TestOracleConnection(s.ctx))
}

func (s *OrchestratorTestSuite) TestConnectionProbeReplyWithoutOK() {
	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&oracle.GenerateResult{Text: "ready to help"}, nil).Once()

	orch := s.newOrchestrator(0, time.Millisecond)

	s.False(orch.TestOracleConnection(s.ctx))
}

func (s *OrchestratorTestSuite) TestConnectionProbeSuccess() {
	s.mockClient.On("Configured").Return(true)
	s.mockClient.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&oracle.GenerateResult{Text: "OK, all good"}, nil).Once()

	orch := s.newOrchestrator(0, time.Millisecond)

	s.True(orch.TestOracleConnection(s.ctx))
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
