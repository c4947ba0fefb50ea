package jisho

type searchResponse struct {
	Meta struct {
		Status int `json:"status"`
	} `json:"meta"`
	Data []apiEntry `json:"data"`
}

type apiEntry struct {
	Slug     string        `json:"slug"`
	IsCommon bool          `json:"is_common"`
	JLPT     []string      `json:"jlpt"`
	Japanese []apiJapanese `json:"japanese"`
	Senses   []apiSense    `json:"senses"`
}

type apiJapanese struct {
	Word    string `json:"word"`
	Reading string `json:"reading"`
}

type apiSense struct {
	EnglishDefinitions []string `json:"english_definitions"`
	PartsOfSpeech      []string `json:"parts_of_speech"`
}
