package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// ThinkingMode selects which of the two cognitive systems handles a scenario.
type ThinkingMode string

const (
	ModeFast       ThinkingMode = "SYSTEM_1"
	ModeDeliberate ThinkingMode = "SYSTEM_2"
)

// Mindset is the belief filter applied on top of the thinking mode.
type Mindset string

const (
	MindsetFixed  Mindset = "FIXED"
	MindsetGrowth Mindset = "GROWTH"
)

// Level is the coarse HIGH/LOW indicator shown next to a selection.
type Level string

const (
	LevelLow  Level = "LOW"
	LevelHigh Level = "HIGH"
)

// ModeDescriptor is the display and prompt metadata for a ThinkingMode.
type ModeDescriptor struct {
	Mode        ThinkingMode `json:"mode" yaml:"mode"`
	Name        string       `json:"name" yaml:"name"`
	Label       string       `json:"label" yaml:"label"`
	Subtitle    string       `json:"subtitle" yaml:"subtitle"`
	Description string       `json:"description" yaml:"description"`
	Examples    []string     `json:"examples" yaml:"examples"`
	EnergyCost  string       `json:"energyCost" yaml:"energyCost"`
	EnergyLoad  Level        `json:"energyLoad" yaml:"energyLoad"`

	// Gloss and Framing are the English fragments embedded in prompts.
	Gloss   string `json:"-" yaml:"-"`
	Framing string `json:"-" yaml:"-"`
	Role    string `json:"-" yaml:"-"`
	// EnergyRange is the guidance range for energyLevel, e.g. "10-30".
	EnergyRange string `json:"-" yaml:"-"`
}

// MindsetDescriptor is the display and prompt metadata for a Mindset.
type MindsetDescriptor struct {
	Mindset         Mindset `json:"mindset" yaml:"mindset"`
	Name            string  `json:"name" yaml:"name"`
	Label           string  `json:"label" yaml:"label"`
	Subtitle        string  `json:"subtitle" yaml:"subtitle"`
	Description     string  `json:"description" yaml:"description"`
	Motto           string  `json:"motto" yaml:"motto"`
	GrowthPotential Level   `json:"growthPotential" yaml:"growthPotential"`

	Gloss   string `json:"-" yaml:"-"`
	Framing string `json:"-" yaml:"-"`
	Role    string `json:"-" yaml:"-"`
}

var (
	fastMode = ModeDescriptor{
		Mode:        ModeFast,
		Name:        "系统一：默认程序",
		Label:       "默认程序 (快)",
		Subtitle:    "自动 • 直觉 • 低能耗",
		Description: "大脑的“自动驾驶”模式。这是一套默认程序，反应迅速，依赖习惯和直觉处理熟悉事务，消耗极少的能量。",
		Examples:    []string{"走路吃东西", "日常问候", "1 + 1 = 2"},
		EnergyCost:  "低 (节能模式)",
		EnergyLoad:  LevelLow,
		Gloss:       "low energy, fast, habitual",
		Framing:     "Thinking fast, intuitively, reacting immediately based on gut feeling and habit. Using very little mental energy. Avoiding complexity.",
		Role:        "System 1 is the default program and the brain's preference.",
		EnergyRange: "10-30",
	}
	deliberateMode = ModeDescriptor{
		Mode:        ModeDeliberate,
		Name:        "系统二：深度思考",
		Label:       "深度思考 (慢)",
		Subtitle:    "缓慢 • 逻辑 • 高能耗",
		Description: "大脑的“手动驾驶”模式。这是一套用来处理陌生、复杂问题的程序，需要刻意专注和逻辑推理，非常消耗脑力。",
		Examples:    []string{"做复杂的数学题", "学习新技能", "做重要决策"},
		EnergyCost:  "高 (耗电模式)",
		EnergyLoad:  LevelHigh,
		Gloss:       "high energy, slow, logical",
		Framing:     "Thinking slowly, methodically, analyzing logic and details. Exerting significant mental effort. Questioning assumptions. Handling the unknown.",
		Role:        "System 2 is deep thinking, used for complex and novel problems.",
		EnergyRange: "70-100",
	}

	fixedMindset = MindsetDescriptor{
		Mindset:         MindsetFixed,
		Name:            "固定型思维",
		Label:           "固定型",
		Subtitle:        "维护形象 • 畏惧挑战",
		Description:     "认为智力和才能是天生的、固定不变的。为了维护“聪明”的形象，往往回避挑战，害怕失败，认为努力是能力不足的表现。",
		Motto:           "如果我要很努力才能学会，说明我不够聪明。",
		GrowthPotential: LevelLow,
		Gloss:           "avoids effortful engagement, protects self-image",
		Framing:         "Believing ability is static. Protecting the 'smart' image. Fearful of failure. Interpreting effort as a lack of talent. Avoiding challenges.",
		Role:            "Avoids deep thinking to look smart without effort. Gives up as soon as the default program fails.",
	}
	growthMindset = MindsetDescriptor{
		Mindset:         MindsetGrowth,
		Name:            "成长型思维",
		Label:           "成长型",
		Subtitle:        "拥抱挑战 • 持续进化",
		Description:     "认为大脑像肌肉一样，越用越聪明。乐于迎接挑战，视失败为成长的契机，相信通过努力和策略可以突破自我。",
		Motto:           "这很难，说明我正在学习和进步。",
		GrowthPotential: LevelHigh,
		Gloss:           "willing to engage effortful thinking, sees effort as the path to mastery",
		Framing:         "Believing ability can grow like a muscle. Embracing the challenge. Persisting despite setbacks.",
		Role:            "Willing to switch into deep thinking to learn. Treats effort as positive.",
	}
)

// DescribeMode returns the descriptor for mode. Unknown values describe as
// the default program.
func DescribeMode(mode ThinkingMode) ModeDescriptor {
	var d ModeDescriptor
	switch mode {
	case ModeDeliberate:
		d = deliberateMode
	case ModeFast:
		d = fastMode
	default:
		d = fastMode
	}
	d.Examples = slices.Clone(d.Examples)
	return d
}

// DescribeMindset returns the descriptor for mindset. Unknown values describe
// as the fixed mindset.
func DescribeMindset(mindset Mindset) MindsetDescriptor {
	switch mindset {
	case MindsetGrowth:
		return growthMindset
	case MindsetFixed:
		return fixedMindset
	default:
		return fixedMindset
	}
}

func Modes() []ThinkingMode { return []ThinkingMode{ModeFast, ModeDeliberate} }

func Mindsets() []Mindset { return []Mindset{MindsetFixed, MindsetGrowth} }

func (m ThinkingMode) Valid() bool { return m == ModeFast || m == ModeDeliberate }

func (m Mindset) Valid() bool { return m == MindsetFixed || m == MindsetGrowth }

func (m ThinkingMode) String() string { return string(m) }

func (m Mindset) String() string { return string(m) }

// ParseMode accepts the wire names plus a few CLI-friendly aliases.
func ParseMode(s string) (ThinkingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "system_1", "system1", "fast", "1":
		return ModeFast, nil
	case "system_2", "system2", "deliberate", "slow", "2":
		return ModeDeliberate, nil
	default:
		return "", fmt.Errorf("catalog: unknown thinking mode %q", s)
	}
}

// ParseMindset accepts FIXED/GROWTH in any case.
func ParseMindset(s string) (Mindset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed":
		return MindsetFixed, nil
	case "growth":
		return MindsetGrowth, nil
	default:
		return "", fmt.Errorf("catalog: unknown mindset %q", s)
	}
}
