package agronomy

// stageDefaults are the built-in applications used when nothing is stored
var stageDefaults = map[string]struct {
	fertilizers []Item
	pesticides  []Item
}{
	StageSeedling: {
		fertilizers: []Item{{Name: "Urea", NPKRatio: "46-0-0", Dosage: "20-30 kg/acre", ApplicationTime: "Basal"}},
		pesticides: []Item{{Name: "Neem oil", TargetPest: "general sucking pests", Dosage: "2-3 ml/L",
			ApplicationTime: "After emergence", SafetyWaitingPeriod: "3-5 days"}},
	},
	StageVegetative: {
		fertilizers: []Item{{Name: "DAP", NPKRatio: "18-46-0", Dosage: "40-50 kg/acre", ApplicationTime: "Top dressing"}},
		pesticides: []Item{{Name: "Chlorantraniliprole", TargetPest: "borers", Dosage: "as per label",
			ApplicationTime: "On incidence", SafetyWaitingPeriod: "7-14 days"}},
	},
	StageFlowering: {
		fertilizers: []Item{{Name: "MOP", NPKRatio: "0-0-60", Dosage: "20-30 kg/acre", ApplicationTime: "Early flowering"}},
		pesticides: []Item{{Name: "Emamectin benzoate", TargetPest: "caterpillars", Dosage: "as per label",
			ApplicationTime: "Early infestation", SafetyWaitingPeriod: "7 days"}},
	},
	StageFruiting: {
		fertilizers: []Item{{Name: "NPK 13:0:45", NPKRatio: "13-0-45", Dosage: "5-8 kg/acre", ApplicationTime: "Foliar, weekly"}},
		pesticides: []Item{{Name: "Spinosad", TargetPest: "thrips", Dosage: "as per label",
			ApplicationTime: "On incidence", SafetyWaitingPeriod: "3 days"}},
	},
	StagePreHarvest: {
		fertilizers: []Item{{Name: "No heavy nitrogen", NPKRatio: "-", Dosage: "Avoid", ApplicationTime: "Pre-harvest"}},
		pesticides:  []Item{{Name: "Avoid chemicals", TargetPest: "-", Dosage: "-", ApplicationTime: "-", SafetyWaitingPeriod: "-"}},
	},
}

// ruleFallback builds advice from the stage defaults. Stages without defaults use the seedling set.
func ruleFallback(cropName, stage string) Record {
	d, ok := stageDefaults[stage]
	if !ok {
		d = stageDefaults[StageSeedling]
	}
	return Record{
		CropName:               cropName,
		GrowthStage:            stage,
		RecommendedFertilizers: append([]Item(nil), d.fertilizers...),
		RecommendedPesticides:  append([]Item(nil), d.pesticides...),
	}
}
