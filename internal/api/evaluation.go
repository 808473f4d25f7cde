package api

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScenarioInfo describes an evaluation scenario without its cases
type ScenarioInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Cases       int    `json:"cases"`
}

// EvaluationRequest selects a classifier and a scenario to score it on
type EvaluationRequest struct {
	Model    string `json:"model" binding:"required"`
	Scenario string `json:"scenario" binding:"required"`
}

func (k *KioskAPI) ListScenarios(c *gin.Context) {
	var scenarios []ScenarioInfo
	for _, s := range k.evaluator.GetScenarios() {
		scenarios = append(scenarios, ScenarioInfo{
			ID:          s.ID,
			Name:        s.Name,
			Type:        s.Type,
			Description: s.Description,
			Cases:       len(s.Cases),
		})
	}

	models := make([]string, 0, len(k.classifiers))
	for name := range k.classifiers {
		models = append(models, name)
	}
	sort.Strings(models)

	c.JSON(http.StatusOK, gin.H{"scenarios": scenarios, "models": models})
}

func (k *KioskAPI) RunEvaluation(c *gin.Context) {
	var req EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cls, ok := k.classifiers[req.Model]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid model: " + req.Model})
		return
	}
	if !k.evaluator.HasScenario(req.Scenario) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scenario: " + req.Scenario})
		return
	}

	result, err := k.evaluator.EvaluateModel(c.Request.Context(), req.Model, cls, req.Scenario)
	if err != nil {
		k.logger.Error("Evaluation failed", zap.String("model", req.Model), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if k.monitor != nil {
		k.monitor.RecordEvaluationResult(result.Model, result.Scenario, result.Metrics)
	}
	c.JSON(http.StatusOK, result)
}
