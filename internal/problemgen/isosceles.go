package problemgen

import "strings"

// Answers for the yes/no isosceles question.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
)

// Isosceles-triangle scenarios. Identification scenarios ask which special
// line is drawn; the rest ask whether triangle ABC must be isosceles.
const (
	ScenarioIdentifyAltitude        Variant = "identify-altitude"
	ScenarioIdentifyMedian          Variant = "identify-median"
	ScenarioIdentifyBisector        Variant = "identify-bisector"
	ScenarioAltitudeIsMedian        Variant = "altitude-is-median"
	ScenarioAltitudeIsBisector      Variant = "altitude-is-bisector"
	ScenarioMedianIsBisector        Variant = "median-is-bisector"
	ScenarioEqualBaseAngles         Variant = "equal-base-angles"
	ScenarioAltitudeOnly            Variant = "altitude-only"
	ScenarioMedianOnly              Variant = "median-only"
	ScenarioMedianFromOtherVertex   Variant = "median-from-other-vertex"
	ScenarioBisectorFromOtherVertex Variant = "bisector-from-other-vertex"
)

var lineOptions = []string{string(LineAltitude), string(LineMedian), string(LineBisector)}

var yesNoOptions = []string{AnswerYes, AnswerNo}

// scenario is one row of the fixed geometry table.
type scenario struct {
	figure      Figure
	question    string
	options     []string
	answer      string
	explanation string
}

const isIsoscelesQuestion = "Is triangle ABC necessarily isosceles?"

var scenarios = map[Variant]scenario{
	ScenarioIdentifyAltitude: {
		figure:      Figure{Lines: []DrawnLine{{Kind: LineAltitude, From: "A"}}},
		question:    "The segment from A meets BC at a right angle. Which special line is it?",
		options:     lineOptions,
		answer:      string(LineAltitude),
		explanation: "A segment from a vertex perpendicular to the opposite side is an altitude.",
	},
	ScenarioIdentifyMedian: {
		figure:      Figure{Lines: []DrawnLine{{Kind: LineMedian, From: "A"}}},
		question:    "The segment from A meets BC at its midpoint. Which special line is it?",
		options:     lineOptions,
		answer:      string(LineMedian),
		explanation: "A segment from a vertex to the midpoint of the opposite side is a median.",
	},
	ScenarioIdentifyBisector: {
		figure:      Figure{Lines: []DrawnLine{{Kind: LineBisector, From: "A"}}},
		question:    "The segment from A splits angle A into two equal angles. Which special line is it?",
		options:     lineOptions,
		answer:      string(LineBisector),
		explanation: "A segment that splits a vertex angle into two equal angles is an angle bisector.",
	},
	ScenarioAltitudeIsMedian: {
		figure: Figure{Lines: []DrawnLine{
			{Kind: LineAltitude, From: "A"},
			{Kind: LineMedian, From: "A"},
		}},
		question:    "The altitude from A is also the median from A. " + isIsoscelesQuestion,
		options:     yesNoOptions,
		answer:      AnswerYes,
		explanation: "If the altitude from a vertex is also the median from that vertex, the two halves are congruent (SAS), so AB = AC.",
	},
	ScenarioAltitudeIsBisector: {
		figure: Figure{Lines: []DrawnLine{
			{Kind: LineAltitude, From: "A"},
			{Kind: LineBisector, From: "A"},
		}},
		question:    "The altitude from A also bisects angle A. " + isIsoscelesQuestion,
		options:     yesNoOptions,
		answer:      AnswerYes,
		explanation: "If the altitude from a vertex is also the angle bisector from that vertex, the two halves are congruent (ASA), so AB = AC.",
	},
	ScenarioMedianIsBisector: {
		figure: Figure{Lines: []DrawnLine{
			{Kind: LineMedian, From: "A"},
			{Kind: LineBisector, From: "A"},
		}},
		question:    "The median from A also bisects angle A. " + isIsoscelesQuestion,
		options:     yesNoOptions,
		answer:      AnswerYes,
		explanation: "If the median from a vertex is also the angle bisector from that vertex, the triangle is isosceles with AB = AC.",
	},
	ScenarioEqualBaseAngles: {
		figure:      Figure{EqualBaseAngles: true},
		question:    "Angles B and C are marked equal. " + isIsoscelesQuestion,
		options:     yesNoOptions,
		answer:      AnswerYes,
		explanation: "Equal base angles are opposite equal sides, so AB = AC.",
	},
	ScenarioAltitudeOnly: {
		figure:      Figure{Lines: []DrawnLine{{Kind: LineAltitude, From: "A"}}},
		question:    "Only the altitude from A is drawn. " + isIsoscelesQuestion,
		options:     yesNoOptions,
		answer:      AnswerNo,
		explanation: "Every triangle has an altitude from each vertex; one altitude alone says nothing about equal sides.",
	},
	ScenarioMedianOnly: {
		figure:      Figure{Lines: []DrawnLine{{Kind: LineMedian, From: "A"}}},
		question:    "Only the median from A is drawn. " + isIsoscelesQuestion,
		options:     yesNoOptions,
		answer:      AnswerNo,
		explanation: "Every triangle has a median from each vertex; one median alone says nothing about equal sides.",
	},
	ScenarioMedianFromOtherVertex: {
		figure: Figure{Lines: []DrawnLine{
			{Kind: LineAltitude, From: "A"},
			{Kind: LineMedian, From: "B"},
		}},
		question:    "The altitude from A and the median from B are drawn. " + isIsoscelesQuestion,
		options:     yesNoOptions,
		answer:      AnswerNo,
		explanation: "The altitude and the median start at different vertices, so neither line plays two roles. The theorem needs both from the same vertex.",
	},
	ScenarioBisectorFromOtherVertex: {
		figure: Figure{Lines: []DrawnLine{
			{Kind: LineAltitude, From: "A"},
			{Kind: LineBisector, From: "C"},
		}},
		question:    "The altitude from A and the angle bisector from C are drawn. " + isIsoscelesQuestion,
		options:     yesNoOptions,
		answer:      AnswerNo,
		explanation: "The altitude and the angle bisector start at different vertices, so they do not force any two sides to be equal.",
	},
}

var (
	identifyScenarios = []Variant{ScenarioIdentifyAltitude, ScenarioIdentifyMedian, ScenarioIdentifyBisector}
	yesNoScenarios    = []Variant{
		ScenarioAltitudeIsMedian, ScenarioAltitudeIsBisector, ScenarioMedianIsBisector,
		ScenarioEqualBaseAngles, ScenarioAltitudeOnly, ScenarioMedianOnly,
	}
	adversarialScenarios = []Variant{ScenarioMedianFromOtherVertex, ScenarioBisectorFromOtherVertex}
)

func isoscelesRule() *Rule {
	medium := append(append([]Variant{}, identifyScenarios...), yesNoScenarios...)
	hard := append(append([]Variant{}, medium...), adversarialScenarios...)
	return &Rule{
		Topic:       TopicIsosceles,
		Title:       "Isosceles triangle reasoning",
		MaxAttempts: 1,
		Points: map[Difficulty]int{
			DifficultyEasy:   10,
			DifficultyMedium: 15,
			DifficultyHard:   20,
		},
		Variants: map[Difficulty][]Variant{
			DifficultyEasy:   identifyScenarios,
			DifficultyMedium: medium,
			DifficultyHard:   hard,
		},
		Build: buildIsosceles,
	}
}

func buildIsosceles(v Variant, _ Difficulty, _ Source) Draft {
	s, ok := scenarios[v]
	if !ok {
		v = ScenarioIdentifyAltitude
		s = scenarios[v]
	}
	fig := s.figure
	fig.Lines = append([]DrawnLine(nil), s.figure.Lines...)
	return Draft{
		Variant: v,
		Prompt: Prompt{
			Text:   "In triangle ABC: " + s.question,
			Figure: &fig,
		},
		Format:      FormatMultipleChoice,
		Options:     append([]string(nil), s.options...),
		Answer:      s.answer,
		Explanation: s.explanation,
	}
}

// DescribeFigure renders the drawn features as a short caption.
func DescribeFigure(f *Figure) string {
	if f == nil {
		return ""
	}
	var parts []string
	for _, l := range f.Lines {
		parts = append(parts, string(l.Kind)+" from "+l.From)
	}
	if f.EqualSides {
		parts = append(parts, "AB and AC marked equal")
	}
	if f.EqualBaseAngles {
		parts = append(parts, "angles B and C marked equal")
	}
	return strings.Join(parts, ", ")
}
