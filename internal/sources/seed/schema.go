package seed

// File is the YAML document describing starter data
type File struct {
	Habits  []HabitDoc `yaml:"habits"`
	Entries []EntryDoc `yaml:"entries"`
	Logs    []LogDoc   `yaml:"logs"`
}

type HabitDoc struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

// EntryDoc is placed daysAgo days before the seeding day
type EntryDoc struct {
	ID      string `yaml:"id"`
	DaysAgo int    `yaml:"daysAgo"`
	Content string `yaml:"content"`
}

type LogDoc struct {
	DaysAgo   int      `yaml:"daysAgo"`
	Completed []string `yaml:"completed"`
}
