package models

// DefaultMonthlyTarget — месячная цель по выручке по умолчанию.
const DefaultMonthlyTarget int64 = 500000

// DefaultTeam возвращает стартовый состав команды.
func DefaultTeam() []TeamMember {
	return []TeamMember{
		{ID: "rak", Name: "Rak", Role: "Content Creator", Avatar: "🎬", Color: "#f59e0b"},
		{ID: "ridu", Name: "Ridu", Role: "Video Editor", Avatar: "✂️", Color: "#8b5cf6"},
		{ID: "sakib", Name: "Sakib", Role: "Content Manager", Avatar: "📊", Color: "#3b82f6"},
		{ID: "saimon", Name: "Saimon", Role: "Operations Lead", Avatar: "⚡", Color: "#ef4444"},
		{ID: "emran", Name: "Emran", Role: "Call Center Manager", Avatar: "📞", Color: "#10b981"},
		{ID: "arefin", Name: "Arefin", Role: "Ads Manager", Avatar: "📢", Color: "#ec4899"},
	}
}

// DefaultAgents возвращает стартовый список агентов продаж.
func DefaultAgents() []Agent {
	return []Agent{
		{ID: "afrin", Name: "Afrin", Avatar: "👩‍💼", Color: "#06b6d4"},
		{ID: "hridoy", Name: "Hridoy", Avatar: "👨‍💼", Color: "#8b5cf6"},
		{ID: "antor", Name: "Antor", Avatar: "👦", Color: "#f59e0b"},
		{ID: "onup", Name: "Onup", Avatar: "👨", Color: "#10b981"},
		{ID: "shamor", Name: "Shamor", Avatar: "🧔", Color: "#ef4444"},
	}
}

// DefaultSources возвращает набор источников выручки, включенных по умолчанию.
func DefaultSources() []string {
	return []string{
		string(SaleTypeCall),
		string(SaleTypeWebsite),
		string(SaleTypeHandCash),
		SourceBatch,
	}
}
