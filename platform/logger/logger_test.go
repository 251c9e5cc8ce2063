package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.LeadScored("lead-1", "event-1", 100, "hot", true)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "lead_scored", entry["msg"])
	assert.Equal(t, float64(100), entry["heat_score"])
	assert.Equal(t, true, entry["red_hot"])
}

func TestWithContextAddsIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	ctx = context.WithValue(ctx, AgentIDKey, "agent-7")
	log.WithContext(ctx).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "agent-7", entry["agent_id"])
}

func TestDevelopmentLoggerEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("development", &buf)

	log.Debug("visible")

	assert.Contains(t, buf.String(), "visible")
}

func TestNamedAndFollowUp(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf).Named("scheduler")

	log.FollowUp("sent", "lead-1", "return_visit", true)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "follow_up", entry["msg"])
	assert.Equal(t, "scheduler", entry["component"])
	assert.Equal(t, "sent", entry["outcome"])
	assert.Equal(t, "lead-1", entry["lead_id"])
	assert.Equal(t, true, entry["return_visit"])
}

func TestRedHotLeadIsWarn(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("production", &buf).RedHotLead("lead-1", "event-1", "agent-1", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "red_hot_lead", entry["msg"])
	assert.Equal(t, float64(2), entry["visit_number"])
}
