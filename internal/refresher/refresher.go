package refresher

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/w920801-a11y/climate-try/internal/service"
	"github.com/w920801-a11y/climate-try/internal/weather"
)

// Refresher periodically re-fetches a configured set of locations so the
// dashboard's common lookups are served from a warm cache.
type Refresher struct {
	scheduler *gocron.Scheduler
	service   service.WeatherService
	locations []weather.Location
	interval  time.Duration
}

func New(locations []weather.Location, interval time.Duration, svc service.WeatherService) *Refresher {
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   svc,
		locations: locations,
		interval:  interval,
	}
}

func (r *Refresher) Start() error {
	if len(r.locations) == 0 {
		log.Info().Msg("refresher: no warm locations configured, nothing to schedule")
		return nil
	}

	_, err := r.scheduler.Every(r.interval).Do(r.refreshAll)
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	log.Info().Int("locations", len(r.locations)).Dur("interval", r.interval).
		Msg("refresher started")
	return nil
}

func (r *Refresher) refreshAll() {
	var wg sync.WaitGroup
	for _, loc := range r.locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			if _, err := r.service.GetWeather(ctx, loc); err != nil {
				log.Warn().Err(err).Str("location", loc.Describe()).
					Msg("refresher: warm fetch failed")
			}
		}()
	}
	wg.Wait()
}

func (r *Refresher) Stop() {
	r.scheduler.Stop()
}
