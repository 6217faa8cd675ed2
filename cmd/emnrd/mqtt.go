package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// TelemetryPublisher republishes per-frame engine telemetry to an MQTT
// broker, grounded on the reference application's MQTTPublisher (spec.md
// DOMAIN STACK).
type TelemetryPublisher struct {
	client mqtt.Client
	topic  string
}

// telemetryPayload is one MQTT telemetry message.
type telemetryPayload struct {
	Timestamp    int64   `json:"timestamp"`
	MeanMaskGain float64 `json:"mean_mask_gain"`
	NoiseFloorDB float64 `json:"noise_floor_db"`
	OutputGain   float64 `json:"output_gain"`
	GainMethod   int     `json:"gain_method"`
	NoiseMethod  int     `json:"noise_method"`
}

func generateClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "emnrd_" + hex.EncodeToString(b)
}

// NewTelemetryPublisher connects to the configured broker. The returned
// publisher auto-reconnects; a failed initial connect is returned as an
// error so the caller can decide whether telemetry is optional.
func NewTelemetryPublisher(cfg MQTTSection) (*TelemetryPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(generateClientID())
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("emnrd: mqtt connect: %w", token.Error())
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "emnrd/telemetry"
	}
	return &TelemetryPublisher{client: client, topic: topic}, nil
}

// Publish sends one telemetry snapshot. Publish failures are logged, not
// returned: telemetry is best-effort and must never block the engine's
// real-time Push/Pull path.
func (p *TelemetryPublisher) Publish(meanMask, noiseFloorDB, outputGain float64, gainMethod, noiseMethod int) {
	payload := telemetryPayload{
		Timestamp:    time.Now().Unix(),
		MeanMaskGain: meanMask,
		NoiseFloorDB: noiseFloorDB,
		OutputGain:   outputGain,
		GainMethod:   gainMethod,
		NoiseMethod:  noiseMethod,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("emnrd: marshalling telemetry: %v", err)
		return
	}
	token := p.client.Publish(p.topic, 0, false, body)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("emnrd: publishing telemetry: %v", err)
		}
	}()
}

// Close disconnects from the broker.
func (p *TelemetryPublisher) Close() {
	p.client.Disconnect(250)
}
