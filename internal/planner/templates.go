package planner

import "github.com/workmesh/maestro/pkg/api"

type (
	// Template is the fixed recipe for one task category: the actions to
	// run, in order, and the intent parameters each one receives
	Template struct {
		Category api.Category
		Required []api.Name
		Steps    []StepTemplate
	}

	// StepTemplate describes one step of a template. Bind lists the intent
	// parameters copied into the step; Defaults holds JSON literals applied
	// when the intent does not supply a value
	StepTemplate struct {
		Action   api.Action
		Bind     []api.Name
		Defaults map[api.Name]string
	}
)

// Action identifiers dispatched by the builtin templates
const (
	ActionFetchCRM       api.Action = "fetch_crm"
	ActionCleanData      api.Action = "clean_data"
	ActionAnalyze        api.Action = "analyze"
	ActionGenerateReport api.Action = "generate_report"
	ActionSendEmail      api.Action = "send_email"
	ActionSendChat       api.Action = "send_chat_message"
)

// Builtin task categories
const (
	CategoryGenerateAndSendReport api.Category = "generate-and-send-report"
	CategoryCRMSnapshot           api.Category = "crm-snapshot"
	CategoryNotifyTeam            api.Category = "notify-team"
)

func builtinTemplates() []*Template {
	return []*Template{
		{
			Category: CategoryGenerateAndSendReport,
			Required: []api.Name{"recipient"},
			Steps: []StepTemplate{
				{
					Action: ActionFetchCRM,
					Bind:   []api.Name{"filter"},
				},
				{
					Action: ActionCleanData,
				},
				{
					Action: ActionAnalyze,
				},
				{
					Action: ActionGenerateReport,
					Bind:   []api.Name{"title", "format"},
					Defaults: map[api.Name]string{
						"format": `"text"`,
					},
				},
				{
					Action: ActionSendEmail,
					Bind:   []api.Name{"recipient", "subject"},
					Defaults: map[api.Name]string{
						"subject": `"Your report is ready"`,
					},
				},
			},
		},
		{
			Category: CategoryCRMSnapshot,
			Steps: []StepTemplate{
				{
					Action: ActionFetchCRM,
					Bind:   []api.Name{"filter"},
				},
				{
					Action: ActionCleanData,
				},
				{
					Action: ActionGenerateReport,
					Bind:   []api.Name{"title"},
					Defaults: map[api.Name]string{
						"title": `"CRM Snapshot"`,
					},
				},
			},
		},
		{
			Category: CategoryNotifyTeam,
			Required: []api.Name{"message"},
			Steps: []StepTemplate{
				{
					Action: ActionSendChat,
					Bind:   []api.Name{"message", "channel"},
				},
			},
		},
	}
}
