package sofa

// combine left-joins the six subscore slices (parallel to windows) back to
// the cohort. Absent subscores stay nil on the row; they count as 0 only
// in the total.
func combine(windows []Window, brain []brainResult, resp []respResult, cardio []cardioResult, liver []liverResult, kidney []kidneyResult, hemo []hemoResult) []Score {
	scores := make([]Score, len(windows))
	for i, w := range windows {
		sc := Score{
			EncounterID: w.EncounterID,
			Start:       w.Start,
			End:         w.End,
			Brain:       brain[i].score,
			Resp:        resp[i].score,
			Cardio:      cardio[i].score,
			Liver:       liver[i].score,
			Kidney:      kidney[i].score,
			Hemo:        hemo[i].score,
			Detail: &ScoreDetail{
				WorstGCS:           brain[i].worstGCS,
				Sedated:            brain[i].sedated,
				Ratio:              resp[i].ratio,
				RatioKind:          resp[i].ratioKind,
				AdvancedSupport:    resp[i].support,
				Extracorporeal:     resp[i].extracorporeal,
				WorstMAP:           cardio[i].worstMAP,
				MaxFirstLineDose:   cardio[i].maxFirstLine,
				MaxFirstLineAt:     cardio[i].maxFirstLineAt,
				MaxVasopressinDose: cardio[i].maxVasopressin,
				MaxVasopressinAt:   cardio[i].maxVasopressinAt,
				OtherPressor:       cardio[i].otherPressor,
				Bilirubin:          liver[i].bilirubin,
				Creatinine:         kidney[i].creatinine,
				Potassium:          kidney[i].potassium,
				PH:                 kidney[i].ph,
				Bicarbonate:        kidney[i].bicarbonate,
				RenalReplacement:   kidney[i].renalReplacement,
				MeetsRenalCriteria: kidney[i].meetsCriteria,
				Platelets:          hemo[i].platelets,
			},
		}
		sc.Total = totalOf(&sc)
		scores[i] = sc
	}
	return scores
}

// totalOf sums the six organ fields, treating absent as 0 for summation
// purposes only.
func totalOf(sc *Score) int {
	total := 0
	for _, v := range []*int{sc.Brain, sc.Resp, sc.Cardio, sc.Liver, sc.Kidney, sc.Hemo} {
		if v != nil {
			total += *v
		}
	}
	return total
}
