package optimization

import (
	"testing"
)

func TestLowResourceConfigIsSmallerThanDefault(t *testing.T) {
	def := DefaultConfig()
	low := LowResourceConfig()

	if low.BroadcastChannelBuffer >= def.BroadcastChannelBuffer {
		t.Errorf("low-resource broadcast buffer %d should be below default %d",
			low.BroadcastChannelBuffer, def.BroadcastChannelBuffer)
	}
	if low.ClientSendBuffer >= def.ClientSendBuffer {
		t.Errorf("low-resource send buffer %d should be below default %d",
			low.ClientSendBuffer, def.ClientSendBuffer)
	}
	if low.EventPollInterval <= def.EventPollInterval {
		t.Error("low-resource profile should poll less often than default")
	}
	if low.MaxClients >= def.MaxClients {
		t.Errorf("low-resource client cap %d should be below default %d",
			low.MaxClients, def.MaxClients)
	}
}

func TestAnalyzeFlagsSlowArchiveWrites(t *testing.T) {
	rec := Analyze(map[string]interface{}{
		"events": map[string]interface{}{
			"max_write_lat_ms": 120.0,
			"errors":           int64(0),
		},
	})
	if !rec.IncreaseDBConnections {
		t.Error("slow event writes should recommend more DB connections")
	}
	if rec.IncreaseBroadcastBuffer {
		t.Error("no websocket errors; broadcast buffer should not be flagged")
	}
	if len(rec.Notes) == 0 {
		t.Error("a recommendation should carry an explanatory note")
	}
}

func TestAnalyzeFlagsWebSocketBackpressure(t *testing.T) {
	rec := Analyze(map[string]interface{}{
		"websocket": map[string]interface{}{
			"errors": int64(3),
		},
	})
	if !rec.IncreaseBroadcastBuffer {
		t.Error("websocket errors should recommend larger broadcast buffers")
	}
	if rec.IncreaseDBConnections {
		t.Error("DB connections should not be flagged without event write issues")
	}
}

func TestAnalyzeHealthySnapshotRecommendsNothing(t *testing.T) {
	rec := Analyze(map[string]interface{}{
		"events": map[string]interface{}{
			"max_write_lat_ms": 2.0,
			"errors":           int64(0),
		},
		"websocket": map[string]interface{}{
			"errors": int64(0),
		},
	})
	if rec.IncreaseBroadcastBuffer || rec.IncreaseDBConnections {
		t.Errorf("healthy snapshot produced recommendations: %+v", rec)
	}
	if len(rec.Notes) != 0 {
		t.Errorf("healthy snapshot produced notes: %v", rec.Notes)
	}
}

func TestApplyRecommendationsScalesFlaggedKnobs(t *testing.T) {
	cfg := &Config{
		BroadcastChannelBuffer: 100,
		ClientSendBuffer:       50,
		DBMaxOpenConns:         4,
		DBMaxIdleConns:         2,
	}
	ApplyRecommendations(cfg, &Recommendations{
		IncreaseBroadcastBuffer: true,
		IncreaseDBConnections:   true,
	})

	if cfg.BroadcastChannelBuffer != 200 || cfg.ClientSendBuffer != 100 {
		t.Errorf("broadcast knobs not doubled: %+v", cfg)
	}
	if cfg.DBMaxOpenConns <= 4 || cfg.DBMaxIdleConns <= 2 {
		t.Errorf("DB pool not grown: %+v", cfg)
	}
}

func TestApplyRecommendationsNoopWithoutFlags(t *testing.T) {
	cfg := &Config{BroadcastChannelBuffer: 100, ClientSendBuffer: 50, DBMaxOpenConns: 4, DBMaxIdleConns: 2}
	before := *cfg
	ApplyRecommendations(cfg, &Recommendations{})
	if *cfg != before {
		t.Errorf("empty recommendations mutated the config: %+v", cfg)
	}
}
