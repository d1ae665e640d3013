package catalog

// Sample is a ready-made scenario offered before the first simulation.
type Sample struct {
	Title    string `json:"title" yaml:"title"`
	Scenario string `json:"scenario" yaml:"scenario"`
}

// Placeholder is the hint shown in an empty scenario input.
const Placeholder = "描述一个情境 (例如：'我想学编程，但是看到复杂的代码就头疼')..."

func SampleScenarios() []Sample {
	return []Sample{
		{Title: "示例：考试失败", Scenario: "这次期中考试我考得很差。"},
		{Title: "示例：全新挑战", Scenario: "老板让我负责一个从未做过的复杂项目。"},
		{Title: "示例：遭受批评", Scenario: "同事在会议上公开指出了我的错误。"},
	}
}

// Catalog bundles every descriptor for clients that render the selectors.
type Catalog struct {
	Modes       []ModeDescriptor    `json:"modes" yaml:"modes"`
	Mindsets    []MindsetDescriptor `json:"mindsets" yaml:"mindsets"`
	Samples     []Sample            `json:"samples" yaml:"samples"`
	Placeholder string              `json:"placeholder" yaml:"placeholder"`
}

func All() Catalog {
	c := Catalog{Samples: SampleScenarios(), Placeholder: Placeholder}
	for _, m := range Modes() {
		c.Modes = append(c.Modes, DescribeMode(m))
	}
	for _, m := range Mindsets() {
		c.Mindsets = append(c.Mindsets, DescribeMindset(m))
	}
	return c
}
