package survey

// DefaultDefinition returns the built-in adverse event questionnaire. The
// graph starts with the minimum reporting criteria (reporter, contact,
// patient, product, narrative), routes through the symptom selector, and
// branches into a symptom-specific section.
func DefaultDefinition(version string) *Definition {
	return &Definition{
		Version:       version,
		EntrySection:  "min_criteria",
		EntryQuestion: "q1",
		Sections: map[string]Section{
			"min_criteria":     minCriteriaSection(),
			"symptom_selector": symptomSelectorSection(),
			"abdominal":        abdominalSection(),
			"headache":         headacheSection(),
			"vomiting":         vomitingSection(),
		},
	}
}

func required() *Constraints {
	return &Constraints{Required: true}
}

func isoDate() *Constraints {
	return &Constraints{Required: true, Pattern: PatternISODate}
}

func minCriteriaSection() Section {
	return Section{
		"q1": {
			ID:   "q1",
			Text: "Who is reporting this information?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "I am a healthcare professional (HCP)", Next: "q2"},
				"b": {Label: "I am not a healthcare professional (consumer)", Next: "q2"},
				"c": {Label: "This is from a published article (literature)", Next: "q2"},
				"d": {Label: "This is from a partner organization", Next: "q2"},
				"e": {Label: "This is from a study", Next: "q2"},
			},
			Constraints: required(),
		},
		"q2": {
			ID:   "q2",
			Text: "Can we contact you for follow-up if needed?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes", Next: "q2a"},
				"b": {Label: "No", Next: "q3"},
			},
			Constraints: required(),
		},
		"q2a": {
			ID:   "q2a",
			Text: "What is the best way to contact you?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Email", Next: "q2a_email"},
				"b": {Label: "Phone", Next: "q2a_phone"},
				"c": {Label: "Other", Next: "q2a_other"},
			},
			Constraints: required(),
		},
		"q2a_email": {
			ID:          "q2a_email",
			Text:        "Enter your email address",
			Type:        TypeFreeText,
			Next:        "q3",
			Hints:       map[string]string{"placeholder": "name@example.com"},
			Constraints: required(),
		},
		"q2a_phone": {
			ID:          "q2a_phone",
			Text:        "Enter your phone number",
			Type:        TypeFreeText,
			Next:        "q3",
			Hints:       map[string]string{"placeholder": "e.g., +1 555 555 5555"},
			Constraints: required(),
		},
		"q2a_other": {
			ID:          "q2a_other",
			Text:        "Enter the best way to contact you",
			Type:        TypeFreeText,
			Next:        "q3",
			Hints:       map[string]string{"placeholder": "e.g., secure portal message"},
			Constraints: required(),
		},
		"q3": {
			ID:   "q3",
			Text: "Are you the person who experienced the event?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes (I am the patient)", Next: "q4"},
				"b": {Label: "No (I am reporting for someone else)", Next: "q3a"},
			},
			Constraints: required(),
		},
		"q3a": {
			ID:   "q3a",
			Text: "What is your relationship to the patient?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Parent/Guardian", Next: "q4"},
				"b": {Label: "Spouse/Partner", Next: "q4"},
				"c": {Label: "Family member", Next: "q4"},
				"d": {Label: "Caregiver", Next: "q4"},
				"e": {Label: "Friend/Other", Next: "q3a_other"},
			},
			Constraints: required(),
		},
		"q3a_other": {
			ID:          "q3a_other",
			Text:        "Describe your relationship to the patient",
			Type:        TypeFreeText,
			Next:        "q4",
			Hints:       map[string]string{"placeholder": "e.g., roommate, coach, etc."},
			Constraints: required(),
		},
		"q4": {
			ID:   "q4",
			Text: "Please provide at least one detail about the person who experienced the event.",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Age", Next: "q4a"},
				"b": {Label: "Sex", Next: "q4b"},
				"c": {Label: "Initials (optional identifier)", Next: "q4c"},
				"d": {Label: "I don't know any of these", Next: "q4_missing"},
			},
			Constraints: required(),
		},
		"q4a": {
			ID:          "q4a",
			Text:        "Enter the patient's age (number only)",
			Type:        TypeFreeText,
			Next:        "q4a_unit",
			Hints:       map[string]string{"placeholder": "e.g., 34"},
			Constraints: required(),
		},
		"q4a_unit": {
			ID:   "q4a_unit",
			Text: "Select the age unit",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Years", Next: "q5"},
				"b": {Label: "Months", Next: "q5"},
				"c": {Label: "Days", Next: "q5"},
				"d": {Label: "Unknown", Next: "q5"},
			},
			Constraints: required(),
		},
		"q4b": {
			ID:   "q4b",
			Text: "Select the patient's sex",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Male", Next: "q5"},
				"b": {Label: "Female", Next: "q5"},
				"c": {Label: "Other", Next: "q5"},
				"d": {Label: "Unknown", Next: "q5"},
			},
			Constraints: required(),
		},
		"q4c": {
			ID:          "q4c",
			Text:        "Enter the patient's initials",
			Type:        TypeFreeText,
			Next:        "q5",
			Hints:       map[string]string{"placeholder": "e.g., J.D."},
			Constraints: required(),
		},
		"q4_missing": {
			ID:   "q4_missing",
			Text: "Understood. Without at least one patient detail (age, sex, or initials), the report may be incomplete. Would you like to proceed anyway?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes, proceed", Next: "q5"},
				"b": {Label: "No, go back", Next: "q4"},
			},
			Constraints: required(),
		},
		"q5": {
			ID:          "q5",
			Text:        "What product do you believe is related to the event?",
			Type:        TypeFreeText,
			Next:        "q6",
			Hints:       map[string]string{"placeholder": "e.g., medication/vaccine name"},
			Constraints: required(),
		},
		"q6": {
			ID:          "q6",
			Text:        "What happened?",
			Type:        TypeFreeText,
			Next:        "GOTO:symptom_selector:q1",
			Hints:       map[string]string{"placeholder": "Describe the symptoms or event in your own words"},
			Constraints: required(),
		},
	}
}

func symptomSelectorSection() Section {
	return Section{
		"q1": {
			ID:   "q1",
			Text: "Which symptom category best matches?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Abdominal / GI", Next: "GOTO:abdominal:q1"},
				"b": {Label: "Headache / Neuro", Next: "GOTO:headache:q1"},
				"c": {Label: "Vomiting", Next: "GOTO:vomiting:q1"},
			},
			Constraints: required(),
		},
	}
}

func abdominalSection() Section {
	return Section{
		"q1": {
			ID:   "q1",
			Text: "When did this symptom start?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Exact date, if known", Next: "q1a"},
				"b": {Label: "Approximate date", Next: "q1b"},
			},
		},
		"q1a": {
			ID:          "q1a",
			Text:        "Enter the exact date (YYYY-MM-DD)",
			Type:        TypeFreeText,
			Next:        "q2",
			Hints:       map[string]string{"placeholder": "YYYY-MM-DD"},
			Constraints: isoDate(),
		},
		"q1b": {
			ID:          "q1b",
			Text:        "Enter an approximate date (e.g., 'about 2 weeks ago')",
			Type:        TypeFreeText,
			Next:        "q2",
			Hints:       map[string]string{"placeholder": "e.g., about 2 weeks ago"},
			Constraints: required(),
		},
		"q2": {
			ID:   "q2",
			Text: "Do you still have pain?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes. Go to #4.", Next: "q4"},
				"b": {Label: "No.", Next: "q3"},
			},
		},
		"q3": {
			ID:   "q3",
			Text: "When did the symptom stop?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Exact date, if known", Next: "q3a"},
				"b": {Label: "Approximate date", Next: "q3b"},
			},
		},
		"q3a": {
			ID:          "q3a",
			Text:        "Enter the exact date (YYYY-MM-DD)",
			Type:        TypeFreeText,
			Next:        "q4",
			Hints:       map[string]string{"placeholder": "YYYY-MM-DD"},
			Constraints: isoDate(),
		},
		"q3b": {
			ID:          "q3b",
			Text:        "Enter an approximate date the symptoms stopped (e.g., 'about 2 weeks ago')",
			Type:        TypeFreeText,
			Next:        "q4",
			Hints:       map[string]string{"placeholder": "e.g., about 2 weeks ago"},
			Constraints: required(),
		},
		"q4": {
			ID:   "q4",
			Text: "Is (was) the pain:",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Sharp?", Next: "q5"},
				"b": {Label: "Dull?", Next: "q5"},
				"c": {Label: "Throbbing?", Next: "q5"},
				"d": {Label: "Burning?", Next: "q5"},
				"e": {Label: "Cramping?", Next: "q5"},
			},
		},
		"q5": {
			ID:   "q5",
			Text: "How would you grade the intensity of the pain? (Refer to visual analog pain scale)",
			Type: TypeScale,
			Options: map[string]Option{
				"a": {Label: "2 - Hurts Little Bit", Next: "q6"},
				"b": {Label: "4 - Hurts Little More", Next: "q6"},
				"c": {Label: "6 - Hurts Even More", Next: "q6"},
				"d": {Label: "8 - Hurts Whole Lot", Next: "q6"},
				"e": {Label: "10 - Hurts Worst", Next: "q6"},
			},
		},
		"q6": {
			ID:   "q6",
			Text: "Does (did) the symptom disrupt your sleep?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes.", Next: "q7"},
				"b": {Label: "No.", Next: "q7"},
				"c": {Label: "N/A. I did not have pain during sleep.", Next: "q7"},
			},
		},
		"q7": {
			ID:   "q7",
			Text: "Is (was) the abdominal pain localized or generalized?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Localized. (Confined to one specific area of the body)", Next: "q8"},
				"b": {Label: "Generalized. (Affect the entire body or a large region of it)", Next: "q9"},
			},
		},
		"q8": {
			ID:   "q8",
			Text: "Where in the abdomen is (was) the pain mainly located? (Refer to figure 1.)",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Upper right side (RUQ)", Next: "q9"},
				"b": {Label: "Lower right side (RLQ)", Next: "q9"},
				"c": {Label: "Upper left side (LUQ)", Next: "q9"},
				"d": {Label: "Lower left side (LLQ)", Next: "q9"},
				"e": {Label: "Upper central (epigastric)", Next: "q9"},
				"f": {Label: "Middle central (periumbilical)", Next: "q9"},
				"g": {Label: "Lower central (suprapubic)", Next: "q9"},
			},
		},
		"q9": {
			ID:   "q9",
			Text: "Does (did) the pain radiate?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes.", Next: "q10"},
				"b": {Label: "No. Go to #11.", Next: "q11"},
			},
		},
		"q10": {
			ID:          "q10",
			Text:        "Where does (did) the pain radiate? (Refer to figure 1.)",
			Type:        TypeFreeText,
			Next:        "q11",
			Hints:       map[string]string{"placeholder": "e.g., back, shoulder, groin"},
			Constraints: required(),
		},
		"q11": {
			ID:   "q11",
			Text: "If you are still having this symptom, is it:",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Worsening?", Next: "q12"},
				"b": {Label: "Stable?", Next: "q12"},
				"c": {Label: "Improving?", Next: "q12"},
				"d": {Label: "Unsure.", Next: "q12"},
				"e": {Label: "No longer having pain.", Next: "q12"},
			},
		},
		"q12": {
			ID:   "q12",
			Text: "The symptom",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Has not affected my daily routine at all.", Next: "q13"},
				"b": {Label: "Has caused me to cancel some of my daily routine.", Next: "q13"},
				"c": {Label: "Has caused me to cancel all of my daily routine.", Next: "q13"},
			},
		},
		"q13": {
			ID:   "q13",
			Text: "Is (was) there any abdominal tenderness (area tender to touch)?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes", Next: "q14"},
				"b": {Label: "No", Next: "q14"},
			},
		},
		"q14": {
			ID:   "q14",
			Text: "Have you had any recent trauma before the symptom began?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes.", Next: "q15"},
				"b": {Label: "No.", Next: "q15"},
			},
		},
		"q15": {
			ID:   "q15",
			Text: "Is (was) the abdominal pain positional (better/worse in a position)?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes.", Next: "q16"},
				"b": {Label: "No.", Next: "q16"},
			},
		},
		"q16": {
			ID:   "q16",
			Text: "Does (did) anything appear to lessen or improve the symptom?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes. What?", Next: "q16a"},
				"b": {Label: "No.", Next: "q17"},
			},
		},
		"q16a": {
			ID:          "q16a",
			Text:        "What improves the symptom?",
			Type:        TypeFreeText,
			Next:        "q17",
			Hints:       map[string]string{"placeholder": "e.g., rest, heat, medication name"},
			Constraints: required(),
		},
		"q17": {
			ID:   "q17",
			Text: "Does (did) anything appear to worsen the symptom?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes. What?", Next: "q17a"},
				"b": {Label: "No.", Next: "q18"},
			},
		},
		"q17a": {
			ID:          "q17a",
			Text:        "What worsens the symptom?",
			Type:        TypeFreeText,
			Next:        "q18",
			Hints:       map[string]string{"placeholder": "e.g., certain foods, movement"},
			Constraints: required(),
		},
		"q18": {
			ID:   "q18",
			Text: "Does (did) taking a deep breath worsen the abdominal pain?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes.", Next: "q19"},
				"b": {Label: "No.", Next: "q19"},
			},
		},
		"q19": {
			ID:   "q19",
			Text: "Are you under any unusual stress?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes. What?", Next: "q19a"},
				"b": {Label: "No.", Next: "q20"},
			},
		},
		"q19a": {
			ID:          "q19a",
			Text:        "Describe the stress:",
			Type:        TypeFreeText,
			Next:        "q20",
			Hints:       map[string]string{"placeholder": "brief description"},
			Constraints: required(),
		},
		"q20": {
			ID:   "q20",
			Text: "Did anything appear to cause this symptom?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes. What?", Next: "q20a"},
				"b": {Label: "No.", Next: NextEnd},
			},
		},
		"q20a": {
			ID:          "q20a",
			Text:        "What do you think caused the symptom?",
			Type:        TypeFreeText,
			Next:        NextEnd,
			Hints:       map[string]string{"placeholder": "brief description"},
			Constraints: required(),
		},
	}
}

func headacheSection() Section {
	return Section{
		"q1": {
			ID:   "q1",
			Text: "When did the headache start?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Exact date, if known", Next: "q1a"},
				"b": {Label: "Approximate date", Next: "q1b"},
			},
		},
		"q1a": {
			ID:          "q1a",
			Text:        "Enter the exact date (YYYY-MM-DD)",
			Type:        TypeFreeText,
			Next:        "q2",
			Hints:       map[string]string{"placeholder": "YYYY-MM-DD"},
			Constraints: isoDate(),
		},
		"q1b": {
			ID:          "q1b",
			Text:        "Enter an approximate date (e.g., 'about 2 weeks ago')",
			Type:        TypeFreeText,
			Next:        "q2",
			Hints:       map[string]string{"placeholder": "e.g., about 2 weeks ago"},
			Constraints: required(),
		},
		"q2": {
			ID:   "q2",
			Text: "How would you grade the intensity of the headache? (Refer to visual analog pain scale)",
			Type: TypeScale,
			Options: map[string]Option{
				"a": {Label: "2 - Hurts Little Bit", Next: "q3"},
				"b": {Label: "4 - Hurts Little More", Next: "q3"},
				"c": {Label: "6 - Hurts Even More", Next: "q3"},
				"d": {Label: "8 - Hurts Whole Lot", Next: "q3"},
				"e": {Label: "10 - Hurts Worst", Next: "q3"},
			},
		},
		"q3": {
			ID:   "q3",
			Text: "Are you experiencing any visual changes or sensitivity to light?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes.", Next: "q4"},
				"b": {Label: "No.", Next: "q4"},
			},
		},
		"q4": {
			ID:          "q4",
			Text:        "Is there anything else about the headache you want to add?",
			Type:        TypeFreeText,
			Next:        NextEnd,
			Hints:       map[string]string{"placeholder": "brief description, or 'none'"},
			Constraints: required(),
		},
	}
}

func vomitingSection() Section {
	return Section{
		"q1": {
			ID:   "q1",
			Text: "When did the vomiting start?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Exact date, if known", Next: "q1a"},
				"b": {Label: "Approximate date", Next: "q1b"},
			},
		},
		"q1a": {
			ID:          "q1a",
			Text:        "Enter the exact date (YYYY-MM-DD)",
			Type:        TypeFreeText,
			Next:        "q2",
			Hints:       map[string]string{"placeholder": "YYYY-MM-DD"},
			Constraints: isoDate(),
		},
		"q1b": {
			ID:          "q1b",
			Text:        "Enter an approximate date (e.g., 'about 2 weeks ago')",
			Type:        TypeFreeText,
			Next:        "q2",
			Hints:       map[string]string{"placeholder": "e.g., about 2 weeks ago"},
			Constraints: required(),
		},
		"q2": {
			ID:   "q2",
			Text: "How often are (were) you vomiting?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Once a day or less", Next: "q3"},
				"b": {Label: "Several times a day", Next: "q3"},
				"c": {Label: "Unable to keep anything down", Next: "q3"},
			},
		},
		"q3": {
			ID:   "q3",
			Text: "Are you able to keep fluids down?",
			Type: TypeSingleChoice,
			Options: map[string]Option{
				"a": {Label: "Yes.", Next: "q4"},
				"b": {Label: "No.", Next: "q4"},
			},
		},
		"q4": {
			ID:          "q4",
			Text:        "Is there anything else about the vomiting you want to add?",
			Type:        TypeFreeText,
			Next:        NextEnd,
			Hints:       map[string]string{"placeholder": "brief description, or 'none'"},
			Constraints: required(),
		},
	}
}
