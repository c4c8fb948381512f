package entity

func str(name string) Field      { return Field{Name: name, Kind: KindString} }
func text(name string) Field     { return Field{Name: name, Kind: KindText} }
func integer(name string) Field  { return Field{Name: name, Kind: KindInt} }
func number(name string) Field   { return Field{Name: name, Kind: KindFloat} }
func date(name string) Field     { return Field{Name: name, Kind: KindDate} }
func dateTime(name string) Field { return Field{Name: name, Kind: KindDateTime} }

func flag(name string, def bool) Field {
	return Field{Name: name, Kind: KindBool, Default: def}
}

func required(f Field) Field {
	f.Required = true
	return f
}

func withDefault(f Field, v any) Field {
	f.Default = v
	return f
}

var highMediumLow = []string{"High", "Medium", "Low"}

// Deliverable is a course deliverable tracked per phase and week.
var Deliverable = &Descriptor{
	Name:   "deliverable",
	Label:  "Deliverable",
	Plural: "deliverables",
	Table:  "deliverables",
	Fields: []Field{
		required(str("title")),
		text("description"),
		required(str("phase")),
		integer("week_number"),
		date("due_date"),
		withDefault(str("status"), "Not Started"),
		withDefault(str("priority"), "Medium"),
		str("category"),
		integer("estimated_hours"),
		integer("actual_hours"),
		withDefault(integer("completion_percentage"), int64(0)),
		text("notes"),
		text("dependencies"),
	},
	StatusField: "status",
	GroupField:  "phase",
	Lookups: map[string]any{
		"phases": []string{
			"Foundation & Planning",
			"Research & Analysis",
			"Implementation",
			"Evaluation & Testing",
			"Final Report & Presentation",
		},
	},
}

// BusinessProcess is a process under review for automation.
var BusinessProcess = &Descriptor{
	Name:   "business_process",
	Label:  "Business process",
	Plural: "business-processes",
	Table:  "business_processes",
	Fields: []Field{
		required(str("name")),
		text("description"),
		str("department"),
		str("process_type"),
		str("current_system"),
		text("pain_points"),
		str("automation_potential"),
		str("ai_opportunity"),
		integer("complexity_score"),
		str("frequency"),
		text("stakeholders"),
		number("current_time_hours"),
		number("target_time_hours"),
		str("cost_impact"),
		str("customer_impact"),
		withDefault(str("evaluation_status"), "Not Started"),
		integer("priority_score"),
		str("implementation_difficulty"),
		str("roi_potential"),
		text("notes"),
	},
	StatusField: "evaluation_status",
	GroupField:  "department",
	Lookups: map[string]any{
		"departments": []string{
			"Sales",
			"Operations",
			"Customer Service",
			"Finance",
			"IT",
			"Human Resources",
			"Marketing",
			"Procurement",
		},
		"automation-levels": highMediumLow,
	},
}

// AITechnology is an AI capability being evaluated.
var AITechnology = &Descriptor{
	Name:   "ai_technology",
	Label:  "AI technology",
	Plural: "ai-technologies",
	Table:  "ai_technologies",
	Fields: []Field{
		required(str("name")),
		text("description"),
		required(str("category")),
		str("subcategory"),
		str("platform_provider"),
		str("pricing_model"),
		text("pricing_details"),
		text("use_cases"),
		text("hl_stearns_applications"),
		str("integration_complexity"),
		text("technical_requirements"),
		text("data_requirements"),
		text("security_considerations"),
		withDefault(str("evaluation_status"), "Not Evaluated"),
		str("pilot_status"),
		str("roi_potential"),
		str("implementation_priority"),
		str("competitive_advantage"),
		str("learning_curve"),
		str("vendor_support"),
		flag("api_availability", false),
		flag("custom_training_possible", false),
		flag("on_premise_option", false),
		flag("compliance_ready", false),
		text("notes"),
	},
	StatusField: "evaluation_status",
	GroupField:  "category",
	Lookups: map[string]any{
		"categories": map[string][]string{
			"Generative AI":               {"Text Generation", "Image Generation", "Code Generation", "Audio Generation", "Video Generation"},
			"Agentic AI":                  {"Autonomous Agents", "Multi-Agent Systems", "Decision Making Agents", "Task Automation Agents"},
			"Embedded AI":                 {"CRM AI Features", "ERP AI Modules", "Business Intelligence AI", "Workflow Automation AI"},
			"Predictive AI":               {"Demand Forecasting", "Risk Assessment", "Customer Behavior Prediction", "Maintenance Prediction"},
			"Computer Vision":             {"Image Recognition", "Document Processing", "Quality Control", "Inventory Management"},
			"Natural Language Processing": {"Chatbots", "Document Analysis", "Sentiment Analysis", "Language Translation"},
			"Machine Learning":            {"Classification", "Regression", "Clustering", "Recommendation Systems"},
		},
		"providers": []string{
			"OpenAI",
			"Microsoft Azure AI",
			"Google Cloud AI",
			"Amazon AWS AI",
			"IBM Watson",
			"Anthropic",
			"Hugging Face",
			"Salesforce Einstein",
			"ServiceNow AI",
			"UiPath AI",
			"Other",
		},
	},
}

// SoftwareTool is a software product being evaluated.
var SoftwareTool = &Descriptor{
	Name:   "software_tool",
	Label:  "Software tool",
	Plural: "software-tools",
	Table:  "software_tools",
	Fields: []Field{
		required(str("name")),
		text("description"),
		required(str("category")),
		str("tool_type"),
		str("vendor"),
		str("pricing_model"),
		text("pricing_details"),
		text("features"),
		str("hl_stearns_fit"),
		str("current_usage"),
		str("replacement_for"),
		text("integration_capabilities"),
		str("data_migration_complexity"),
		text("training_requirements"),
		str("support_quality"),
		str("scalability"),
		text("security_features"),
		flag("mobile_support", false),
		flag("cloud_based", true),
		flag("on_premise_option", false),
		str("api_quality"),
		str("customization_level"),
		withDefault(str("evaluation_status"), "Not Evaluated"),
		str("implementation_priority"),
		str("roi_potential"),
		str("risk_level"),
		str("decision_status"),
		text("pilot_results"),
		text("notes"),
	},
	StatusField: "evaluation_status",
	GroupField:  "category",
	Lookups: map[string]any{
		"categories": map[string][]string{
			"CRM":                 {"Salesforce", "HubSpot", "Microsoft Dynamics 365", "Pipedrive", "Zoho CRM"},
			"ERP":                 {"NetSuite", "SAP", "Microsoft Dynamics 365", "QuickBooks Enterprise", "Sage"},
			"Cloud Platform":      {"Microsoft Azure", "Amazon AWS", "Google Cloud Platform", "IBM Cloud", "Oracle Cloud"},
			"Analytics & BI":      {"Power BI", "Tableau", "Looker", "Qlik Sense", "Google Analytics"},
			"Communication":       {"Microsoft Teams", "Slack", "Zoom", "Google Workspace", "Cisco Webex"},
			"Project Management":  {"Microsoft Project", "Asana", "Monday.com", "Jira", "Trello"},
			"Document Management": {"SharePoint", "Google Drive", "Dropbox Business", "Box", "OneDrive"},
			"Automation":          {"Power Automate", "Zapier", "UiPath", "Automation Anywhere", "Blue Prism"},
		},
		"types": []string{"Core", "Optional", "Integration"},
		"evaluation-criteria": map[string]string{
			"functionality": "How well does it meet business requirements?",
			"usability":     "How easy is it to use and learn?",
			"integration":   "How well does it integrate with existing systems?",
			"scalability":   "Can it grow with the business?",
			"security":      "How secure is the platform?",
			"support":       "Quality of vendor support and documentation",
			"cost":          "Total cost of ownership including licensing and implementation",
			"reliability":   "System uptime and performance",
			"customization": "Ability to customize to specific needs",
			"reporting":     "Quality and flexibility of reporting capabilities",
		},
	},
}

// ResearchItem is a primary or secondary research activity.
var ResearchItem = &Descriptor{
	Name:   "research_item",
	Label:  "Research item",
	Plural: "research-items",
	Table:  "research_items",
	Fields: []Field{
		required(str("title")),
		text("description"),
		required(str("research_type")),
		str("research_method"),
		str("category"),
		str("source_type"),
		text("source_details"),
		str("target_audience"),
		text("suggested_questions"),
		str("data_collection_method"),
		integer("sample_size_target"),
		integer("sample_size_actual"),
		withDefault(str("completion_status"), "Not Started"),
		integer("quality_score"),
		integer("relevance_score"),
		integer("credibility_score"),
		text("key_findings"),
		text("actionable_insights"),
		text("supporting_evidence"),
		text("limitations"),
		flag("follow_up_needed", false),
		text("follow_up_actions"),
		text("related_deliverables"),
		str("storage_location"),
		str("storage_url"),
		text("tags"),
		withDefault(str("priority"), "Medium"),
		date("deadline"),
		str("assigned_to"),
		str("review_status"),
		text("notes"),
	},
	StatusField: "completion_status",
	GroupField:  "research_type",
	Lookups: map[string]any{
		"methods": map[string][]string{
			"Primary Research": {
				"Interviews", "Surveys", "Focus Groups", "Observations",
				"Case Studies", "Experiments", "Field Studies", "Ethnographic Studies",
			},
			"Secondary Research": {
				"Literature Review", "Industry Reports", "Academic Papers", "Government Data",
				"Company Reports", "Market Research", "Competitive Analysis", "Historical Data Analysis",
			},
		},
		"suggested-questions": map[string][]string{
			"Business Process Analysis": {
				"What are the current pain points in this process?",
				"How much time does this process currently take?",
				"What are the costs associated with this process?",
				"Who are the key stakeholders involved?",
				"What tools/systems are currently used?",
				"What would success look like for this process?",
				"What are the compliance/regulatory requirements?",
				"What are the biggest bottlenecks?",
			},
			"Technology Evaluation": {
				"What are the key features required?",
				"How does this integrate with existing systems?",
				"What is the total cost of ownership?",
				"What training would be required?",
				"What are the security implications?",
				"How scalable is this solution?",
				"What is the vendor support like?",
				"What are the implementation timelines?",
			},
			"Stakeholder Interviews": {
				"What are your biggest challenges in your current role?",
				"How do you currently handle [specific process]?",
				"What would make your job easier?",
				"What concerns do you have about new technology?",
				"How do you measure success in your department?",
				"What training or support would you need?",
				"How do you see this impacting your workflow?",
				"What questions do you have about the proposed changes?",
			},
			"Market Research": {
				"Who are the key competitors in this space?",
				"What are the industry trends?",
				"What are the best practices in similar companies?",
				"What are the regulatory considerations?",
				"What are the emerging technologies?",
				"What are the cost benchmarks?",
				"What are the implementation challenges?",
				"What are the success factors?",
			},
		},
		"data-sources": map[string][]string{
			"Academic": {
				"Google Scholar", "JSTOR", "IEEE Xplore", "ACM Digital Library",
				"ResearchGate", "Academia.edu", "PubMed", "SSRN",
			},
			"Industry": {
				"Gartner", "Forrester", "IDC", "McKinsey Global Institute",
				"Deloitte Insights", "PwC Research", "KPMG Insights", "EY Insights",
			},
			"Government": {
				"Bureau of Labor Statistics", "Census Bureau", "SEC Filings", "Federal Trade Commission",
				"Department of Commerce", "Small Business Administration", "NIST", "GAO Reports",
			},
			"Business": {
				"Company Annual Reports", "Industry Association Reports", "Trade Publications", "Conference Proceedings",
				"Vendor White Papers", "Case Studies", "Press Releases", "Financial Reports",
			},
		},
	},
}

// Integration is a connection to an external platform.
var Integration = &Descriptor{
	Name:   "integration",
	Label:  "Integration",
	Plural: "integrations",
	Table:  "integrations",
	Fields: []Field{
		required(str("name")),
		required(str("platform")),
		str("integration_type"),
		text("purpose"),
		str("data_sync_direction"),
		str("sync_frequency"),
		str("api_endpoint"),
		str("authentication_method"),
		flag("credentials_stored", false),
		withDefault(str("setup_status"), "Not Configured"),
		dateTime("last_sync"),
		str("sync_status"),
		text("error_log"),
		text("data_mapping"),
		text("filters_applied"),
		text("security_considerations"),
		text("compliance_notes"),
		text("performance_metrics"),
		text("usage_statistics"),
		text("configuration_notes"),
		text("troubleshooting_guide"),
	},
	StatusField: "setup_status",
	GroupField:  "platform",
	Lookups: map[string]any{
		"platforms": map[string][]string{
			"Cloud Storage":       {"Google Drive", "Microsoft OneDrive", "Dropbox", "Box", "Amazon S3"},
			"Productivity Suites": {"Microsoft 365", "Google Workspace", "Notion", "Airtable", "Monday.com"},
			"CRM Systems":         {"Salesforce", "HubSpot", "Microsoft Dynamics 365", "Pipedrive", "Zoho CRM"},
			"ERP Systems":         {"NetSuite", "SAP", "Microsoft Dynamics 365", "QuickBooks", "Sage"},
			"Communication":       {"Microsoft Teams", "Slack", "Discord", "Zoom", "Webex"},
			"Analytics":           {"Power BI", "Tableau", "Google Analytics", "Looker", "Qlik"},
		},
		"types": []string{
			"API",
			"Webhook",
			"Database Connection",
			"File Transfer",
			"Real-time Sync",
			"Batch Processing",
			"ETL Pipeline",
			"Message Queue",
			"Direct Connection",
			"Third-party Connector",
		},
		"authentication-methods": []string{
			"OAuth 2.0",
			"API Key",
			"Basic Authentication",
			"Bearer Token",
			"JWT",
			"SAML",
			"Certificate-based",
			"Custom Authentication",
		},
		"sync-frequencies": []string{
			"Real-time",
			"Every 5 minutes",
			"Every 15 minutes",
			"Every 30 minutes",
			"Hourly",
			"Every 4 hours",
			"Every 12 hours",
			"Daily",
			"Weekly",
			"Monthly",
			"On-demand",
		},
	},
}

// Catalog returns every entity type in a stable order.
func Catalog() []*Descriptor {
	return []*Descriptor{
		Deliverable,
		BusinessProcess,
		AITechnology,
		SoftwareTool,
		ResearchItem,
		Integration,
	}
}

// ByPlural looks up an entity type by its route segment.
func ByPlural(plural string) (*Descriptor, bool) {
	for _, d := range Catalog() {
		if d.Plural == plural {
			return d, true
		}
	}
	return nil, false
}
