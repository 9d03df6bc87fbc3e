package main

import (
	"net/http"
	"time"

	"lorecast/internal/completion"
	"lorecast/internal/config"
	"lorecast/internal/discovery"
	"lorecast/internal/enrichment"
	"lorecast/internal/muxing"
	"lorecast/internal/remotesync"
	"lorecast/internal/scrape"
	"lorecast/internal/services/ffmpeg"
	"lorecast/internal/services/rsync"
	"lorecast/internal/services/scraper"
	"lorecast/internal/services/tts"
	"lorecast/internal/stage"
	"lorecast/internal/store"
	"lorecast/internal/synthesis"
	"lorecast/internal/workflow"
)

type stageRegistrar interface {
	Register(stage.Handler)
	Router() *workflow.Router
}

func registerStages(reg stageRegistrar, cfg *config.Config, st *store.Client) {
	if reg == nil || cfg == nil {
		return
	}

	requestTimeout := time.Duration(cfg.Scraper.RequestTimeout) * time.Second
	fetcher := scraper.NewBrowserFetcher(cfg.Scraper.BrowserURL, cfg.Scraper.RenderWaitMS, requestTimeout)
	pages := scraper.New(fetcher)
	httpClient := &http.Client{Timeout: requestTimeout}

	speech := tts.NewCLI(tts.WithBinary(cfg.TTS.Binary), tts.WithVoice(cfg.TTS.Voice))
	media := ffmpeg.NewCLI(cfg.Mux.FFmpegBinary, cfg.Mux.FFprobeBinary)
	transfer := rsync.NewCLI(cfg.Sync.SSHKeyPath, time.Duration(cfg.Sync.TransferTimeout)*time.Second)

	reg.Register(discovery.NewHandler(cfg, st, pages, reg.Router()))
	reg.Register(enrichment.NewHandler(st, pages, httpClient))
	reg.Register(scrape.NewHandler(st, pages))
	reg.Register(synthesis.NewHandler(st, speech, time.Duration(cfg.TTS.Timeout)*time.Second))
	reg.Register(muxing.NewHandler(st, media, cfg.Mux.AudioBitrate))
	reg.Register(completion.NewHandler(st, time.Duration(cfg.Sync.DispatchDelay)*time.Second))
	reg.Register(remotesync.NewHandler(st, transfer, cfg.Sync.Destination, time.Duration(cfg.Sync.LockTTL)*time.Second))
}
