package evaluation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"seniorkiosk/internal/intent"
	"seniorkiosk/internal/models"
)

// DefaultConcurrency bounds parallel classifier calls during a run
const DefaultConcurrency = 4

// Evaluator scores intent classifiers against labeled utterances
type Evaluator struct {
	scenarios   map[string]*TestScenario
	concurrency int
	logger      *zap.Logger
}

// TestScenario is a named set of labeled utterances
type TestScenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Cases       []Case `json:"cases"`
}

// Case pairs an utterance with the intent it should resolve to
type Case struct {
	Utterance string             `json:"utterance"`
	Want      models.VoiceIntent `json:"want"`
}

// EvaluationResult is the outcome of one classifier on one scenario
type EvaluationResult struct {
	Model    string                 `json:"model"`
	Scenario string                 `json:"scenario"`
	Metrics  map[string]interface{} `json:"metrics"`
	Events   []EventLog             `json:"events,omitempty"`
}

// EventLog records a misclassified or failed utterance
type EventLog struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
}

// NewEvaluator creates an evaluator loaded with the built-in scenarios
func NewEvaluator(logger *zap.Logger) *Evaluator {
	e := &Evaluator{
		scenarios:   make(map[string]*TestScenario),
		concurrency: DefaultConcurrency,
		logger:      logger.Named("evaluation"),
	}
	e.loadScenarios()
	return e
}

func addOrder(item string, temp models.Temperature) models.VoiceIntent {
	return models.VoiceIntent{Action: models.ActionAddOrder, Item: item, Temperature: temp}
}

func action(a models.Action) models.VoiceIntent {
	return models.VoiceIntent{Action: a}
}

// loadScenarios registers utterances for the built-in menu
func (e *Evaluator) loadScenarios() {
	e.scenarios["basic_orders"] = &TestScenario{
		ID:          "basic_orders",
		Name:        "Basic Orders",
		Type:        "ordering",
		Description: "Single menu items requested by name, synonym or abbreviation.",
		Cases: []Case{
			{"아메리카노 주세요", addOrder("아메리카노", models.Hot)},
			{"라떼 하나", addOrder("카페라떼", models.Hot)},
			{"커피 한 잔 주세요", addOrder("아메리카노", models.Hot)},
			{"유자차 주세요", addOrder("유자차", models.Hot)},
			{"쌍화차 하나요", addOrder("쌍화차", models.Hot)},
		},
	}

	e.scenarios["navigation"] = &TestScenario{
		ID:          "navigation",
		Name:        "Navigation",
		Type:        "control",
		Description: "Checkout, back and add-to-cart commands.",
		Cases: []Case{
			{"결제해줘", action(models.ActionCheckout)},
			{"계산할게요", action(models.ActionCheckout)},
			{"주문 완료", action(models.ActionCheckout)},
			{"뒤로 가줘", action(models.ActionGoBack)},
			{"취소할래요", action(models.ActionGoBack)},
			{"장바구니에 담아줘", action(models.ActionAddToCart)},
			{"이걸로 할게요", action(models.ActionAddToCart)},
		},
	}

	e.scenarios["temperature"] = &TestScenario{
		ID:          "temperature",
		Name:        "Temperature",
		Type:        "detail",
		Description: "Hot and iced variant selection on the detail screen.",
		Cases: []Case{
			{"따뜻하게 주세요", action(models.ActionSelectHot)},
			{"뜨거운 걸로", action(models.ActionSelectHot)},
			{"아이스로 해주세요", action(models.ActionSelectIce)},
			{"시원한 거", action(models.ActionSelectIce)},
			{"차가운 거요", action(models.ActionSelectIce)},
		},
	}

	e.scenarios["precedence"] = &TestScenario{
		ID:          "precedence",
		Name:        "Mixed Commands",
		Type:        "precedence",
		Description: "Utterances that hit several keyword groups at once.",
		Cases: []Case{
			{"아메리카노 결제해줘", action(models.ActionCheckout)},
			{"아이스 아메리카노 담아줘", action(models.ActionSelectIce)},
			{"따뜻한 라떼 주세요", action(models.ActionSelectHot)},
			{"취소하고 결제", action(models.ActionCheckout)},
			{"뒤로 가서 아이스", action(models.ActionGoBack)},
		},
	}

	e.scenarios["unknown"] = &TestScenario{
		ID:          "unknown",
		Name:        "Out of Scope",
		Type:        "robustness",
		Description: "Small talk that must not change the order.",
		Cases: []Case{
			{"안녕하세요", models.Unknown()},
			{"오늘 날씨 어때", models.Unknown()},
		},
	}
}

// HasScenario checks if a scenario exists
func (e *Evaluator) HasScenario(id string) bool {
	_, exists := e.scenarios[id]
	return exists
}

// GetScenarios returns all scenarios ordered by id
func (e *Evaluator) GetScenarios() []*TestScenario {
	scenarios := make([]*TestScenario, 0, len(e.scenarios))
	for _, s := range e.scenarios {
		scenarios = append(scenarios, s)
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].ID < scenarios[j].ID })
	return scenarios
}

// EvaluateModel runs every case of a scenario through the classifier
func (e *Evaluator) EvaluateModel(ctx context.Context, model string, cls intent.Classifier, scenarioID string) (*EvaluationResult, error) {
	scenario, exists := e.scenarios[scenarioID]
	if !exists {
		return nil, fmt.Errorf("scenario not found: %s", scenarioID)
	}

	e.logger.Info("Evaluating classifier",
		zap.String("model", model),
		zap.String("scenario", scenarioID),
		zap.Int("cases", len(scenario.Cases)),
	)

	outcomes := make([]caseOutcome, len(scenario.Cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, tc := range scenario.Cases {
		g.Go(func() error {
			start := time.Now()
			got, err := cls.Classify(gctx, tc.Utterance)
			outcomes[i] = caseOutcome{Case: tc, Got: got, Err: err, Latency: time.Since(start)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation interrupted: %w", err)
	}

	score := scoreOutcomes(outcomes)
	return &EvaluationResult{
		Model:    model,
		Scenario: scenarioID,
		Metrics:  score.AsMap(),
		Events:   failureEvents(outcomes),
	}, nil
}

// EvaluateAll runs every scenario, in id order
func (e *Evaluator) EvaluateAll(ctx context.Context, model string, cls intent.Classifier) ([]*EvaluationResult, error) {
	var results []*EvaluationResult
	for _, s := range e.GetScenarios() {
		res, err := e.EvaluateModel(ctx, model, cls, s.ID)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func failureEvents(outcomes []caseOutcome) []EventLog {
	var events []EventLog
	for _, o := range outcomes {
		if o.Err == nil && o.correct() {
			continue
		}
		data := map[string]interface{}{
			"utterance": o.Case.Utterance,
			"want":      o.Case.Want,
		}
		kind := "misclassified"
		if o.Err != nil {
			kind = "classifier_error"
			data["error"] = o.Err.Error()
		} else {
			data["got"] = o.Got
		}
		events = append(events, EventLog{Timestamp: time.Now(), Type: kind, Data: data})
	}
	return events
}
