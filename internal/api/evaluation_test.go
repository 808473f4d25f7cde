package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/evaluation"
	"seniorkiosk/internal/intent"
	"seniorkiosk/internal/models"
)

func withEvaluator(o *Options) {
	o.Evaluator = evaluation.NewEvaluator(zap.NewNop())
	o.Classifiers = map[string]intent.Classifier{
		"keyword": intent.NewKeywordMatcher(catalog.Default()),
		"unknown": intent.ClassifierFunc(func(context.Context, string) (models.VoiceIntent, error) {
			return models.Unknown(), nil
		}),
	}
}

func TestListScenarios(t *testing.T) {
	f := setupAPI(t, withEvaluator)

	rec := f.do(t, http.MethodGet, "/api/v1/evaluation/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Scenarios []ScenarioInfo `json:"scenarios"`
		Models    []string       `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"keyword", "unknown"}, resp.Models)
	require.NotEmpty(t, resp.Scenarios)
	assert.Equal(t, "basic_orders", resp.Scenarios[0].ID)
	assert.Positive(t, resp.Scenarios[0].Cases)
}

func TestRunEvaluation(t *testing.T) {
	f := setupAPI(t, withEvaluator)

	rec := f.do(t, http.MethodPost, "/api/v1/evaluation/run", gin.H{"model": "keyword", "scenario": "navigation"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result evaluation.EvaluationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1.0, result.Metrics["accuracy"])

	score, ok := f.monitor.GetMetric("eval_keyword_navigation_accuracy")
	require.True(t, ok)
	assert.Equal(t, 1.0, score)

	rec = f.do(t, http.MethodPost, "/api/v1/evaluation/run", gin.H{"model": "unknown", "scenario": "unknown"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/evaluation/run", gin.H{"model": "gpt", "scenario": "navigation"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/evaluation/run", gin.H{"model": "keyword", "scenario": "busy_night"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
