package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"scrabble/arbiter"
	"scrabble/engine"
	"scrabble/game"
	"scrabble/judge"
	"scrabble/metrics"
	"scrabble/provider"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx := context.Background()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY is required")
	}

	j, err := buildJudge(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build judge")
	}

	var providers []provider.Provider
	for _, model := range strings.Split(getEnv("SCRABBLE_MODELS", "gemini-2.5-pro,gemini-2.5-flash"), ",") {
		model = strings.TrimSpace(model)
		if model == "" {
			continue
		}
		p, err := provider.NewGemini(ctx, apiKey, model)
		if err != nil {
			log.Fatal().Err(err).Str("model", model).Msg("failed to build provider")
		}
		providers = append(providers, p)
	}

	cfg := arbiter.DefaultConfig()
	cfg.Language = getEnv("SCRABBLE_LANGUAGE", "English")
	if secs := getEnvInt("SESSION_TIMEOUT_SECONDS", 0); secs > 0 {
		cfg.SessionTimeout = time.Duration(secs) * time.Second
	}

	collector := metrics.NewCollector()
	options := []arbiter.Option{
		arbiter.WithCollector(collector),
		arbiter.WithToolRegistry(arbiter.NewRegistry()),
	}
	if parserModel := getEnv("PARSER_MODEL", "gemini-2.5-flash-lite"); parserModel != "" {
		rec, err := provider.NewGemini(ctx, apiKey, parserModel)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build parser fallback model")
		}
		options = append(options, arbiter.WithReconstructor(rec))
	}
	if fallbackModel := os.Getenv("FALLBACK_MODEL"); fallbackModel != "" {
		sub, err := provider.NewGemini(ctx, apiKey, fallbackModel)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build fallback model")
		}
		for _, p := range providers {
			options = append(options, arbiter.WithFallback(p.ModelID(), sub))
		}
	}

	arb, err := arbiter.New(providers, j, cfg, options...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build arbiter")
	}

	seed := uint64(getEnvInt("SEED", int(time.Now().UnixNano())))
	bag := game.NewTileBag(seed)
	players := []*game.PlayerState{
		{Name: "Alpha", Rack: bag.Draw(game.RackSize)},
		{Name: "Beta", Rack: bag.Draw(game.RackSize)},
	}
	g, err := game.NewGame(game.NewBoard(), bag, players, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build game")
	}

	agents := []engine.Agent{
		engine.NewArbiterAgent(players[0].Name, arb),
		engine.NewArbiterAgent(players[1].Name, arb),
	}
	eng, err := engine.New(g, agents)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build engine")
	}

	scores, err := eng.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("game failed")
	}
	log.Info().Uint64("seed", seed).Interface("scores", scores).Msg("final scores")

	if auditDir := os.Getenv("AUDIT_DIR"); auditDir != "" {
		writer, err := metrics.NewWriter(auditDir)
		if err != nil {
			log.Error().Err(err).Msg("failed to create audit writer")
			return
		}
		if err := writer.WriteCallRecords(collector.Calls()); err != nil {
			log.Error().Err(err).Msg("failed to write call records")
		}
		if err := writer.WriteSessionRecords(collector.Sessions()); err != nil {
			log.Error().Err(err).Msg("failed to write session records")
		}
	}
}

// buildJudge prefers an offline wordlist, then a remote judge service, then a
// model-backed judge.
func buildJudge(ctx context.Context, apiKey string) (judge.Judge, error) {
	if path := os.Getenv("WORDLIST_PATH"); path != "" {
		return judge.NewOfflineFromPath(path)
	}
	if url := os.Getenv("JUDGE_URL"); url != "" {
		return judge.NewOnline(url, 15*time.Second), nil
	}
	return judge.NewModel(ctx, apiKey, getEnv("JUDGE_MODEL", "gemini-2.5-flash"))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err != nil {
			log.Warn().Str("key", key).Str("value", v).Msg("invalid integer env var")
		} else {
			return n
		}
	}
	return fallback
}
