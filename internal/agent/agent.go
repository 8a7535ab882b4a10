// Package agent wraps the Gemini model on the Vertex AI backend and runs the
// function-calling conversation that produces a deal memo.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/cre-analyst/deal-memo-agent/internal/config"
)

// ErrEmptyMemo reports that the model finished without producing any memo
// text. The HTTP layer maps it to a fixed message.
var ErrEmptyMemo = errors.New("model returned an empty deal memo")

// maxToolTurns bounds the dispatch loop so a model that keeps requesting
// tools cannot hang a request forever. A leftover call after the cap shows up
// as a warning marker in the memo instead of an error.
const maxToolTurns = 10

type Agent struct {
	client *genai.Client
	model  string
	tools  *Toolset
	log    *zap.Logger
}

// New initializes the Vertex AI client. A failure here is fatal to the
// process; the service must not start without a working model client.
func New(ctx context.Context, cfg *config.Config, toolset *Toolset, log *zap.Logger) (*Agent, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("vertex AI initialization failed: %w", err)
	}

	log.Info("vertex AI initialized",
		zap.String("project", cfg.ProjectID),
		zap.String("region", cfg.Region),
		zap.String("model", cfg.ModelName))

	return &Agent{
		client: client,
		model:  cfg.ModelName,
		tools:  toolset,
		log:    log,
	}, nil
}

// GenerateDealMemo sends the instructional prompt with the five tools
// registered and automatic tool selection enabled, executes whatever function
// calls the model decides to make, and returns the final synthesized memo.
// Which tools run, with what arguments and in what order, is the model's
// choice; the prompt's five-step procedure is advisory.
func (a *Agent) GenerateDealMemo(ctx context.Context, address string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Tools: toolDeclarations(),
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAuto,
			},
		},
	}

	chat, err := a.client.Chats.Create(ctx, a.model, genCfg, nil)
	if err != nil {
		return "", fmt.Errorf("failed to start model conversation: %w", err)
	}

	a.log.Info("sending prompt to Gemini with tools", zap.String("address", address))
	resp, err := chat.SendMessage(ctx, genai.Part{Text: buildPrompt(address)})
	if err != nil {
		return "", fmt.Errorf("model invocation failed: %w", err)
	}

	for turn := 0; turn < maxToolTurns; turn++ {
		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			break
		}

		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			result := a.tools.Dispatch(ctx, call.Name, call.Args)
			parts = append(parts, genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					Name:     call.Name,
					Response: result,
				},
			})
		}

		resp, err = chat.SendMessage(ctx, parts...)
		if err != nil {
			return "", fmt.Errorf("model invocation failed: %w", err)
		}
	}

	memo := collectMemoText(resp)
	if strings.TrimSpace(memo) == "" {
		a.log.Error("gemini returned an empty or nearly empty deal memo")
		return "", ErrEmptyMemo
	}

	a.log.Info("deal memo generated successfully")
	return memo, nil
}

// collectMemoText concatenates the text segments of the final response. An
// unresolved function call at this point is narrated as a visible warning
// rather than treated as fatal.
func collectMemoText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			b.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			b.WriteString(fmt.Sprintf(
				"\n\n**[Warning: Agent attempted to call a tool in final response unexpectedly: %s]**\n\n",
				part.FunctionCall.Name))
		}
	}
	return b.String()
}

// buildPrompt embeds the address into the fixed instructional prompt. The
// step ordering and section headings are part of the output contract.
func buildPrompt(address string) string {
	return fmt.Sprintf(`You are an expert commercial real estate loan analysis agent named 'CRE-Analyst-AI'. Your task is to generate
a comprehensive deal memo for the following property, leveraging your available tools to gather all necessary information.

Property for Analysis: %s

Follow these steps meticulously, using your tools where appropriate:

1.  **Validate Address:** First, use your `+"`validate_address`"+` tool to perform a basic check on the provided address. If the address is deemed invalid, immediately stop and return an error message explaining why.
2.  **Gather Property Details:** If the address is valid, use your `+"`get_geocode_and_place_id`"+` tool to obtain its precise geographic coordinates (latitude, longitude), Place ID, and parsed address components (city, state, zip_code). Then, use `+"`get_aerial_view_insights`"+` to get any available aerial information or a visual inspection link.
3.  **Analyze Demographics:** Use the `+"`get_demographics_by_zip`"+` tool (with the zip code from geocoding) to gather key demographic statistics for the area from BigQuery public datasets.
4.  **Find Comparables:** Use the `+"`find_comparable_properties_in_bq`"+` tool (with the city and state from geocoding) to retrieve up to 5 relevant comparable commercial properties from your custom BigQuery dataset. Infer a broad 'property_type' if possible, or state if it's unknown.
5.  **Synthesize and Generate Memo:** Once all information is gathered, synthesize it into a professional, data-driven, and actionable deal memo. Structure the memo with the following sections, ensuring all relevant gathered data is incorporated:

    *   **Executive Summary:** A concise overview summarizing the property, key market insights, potential risks, and a high-level valuation perspective.
    *   **Property Overview:** Detailed information about the subject property including its formatted address, geographic coordinates, Google Place ID, and any aerial view insights or links.
    *   **Market and Demographic Analysis:** Key demographic data for the area (e.g., total population, median household income, housing units, median rent). Discuss the implications of these trends for the commercial real estate market.
    *   **Risk Assessment:** Identify potential risks based on location, market data (e.g., population decline, low income), or any insights from aerial views (e.g., proximity to flood zones - if such tools were integrated).
    *   **Collateral Valuation Insights:** Present the findings from the comparable properties search. Discuss average prices, square footage, and how the subject property compares to these. Provide insights that support a valuation perspective (e.g., "based on comps, the property's value appears to be in the range of X to Y").

If any tool call fails, mention the failure in the memo and explain what data could not be retrieved.`, address)
}
