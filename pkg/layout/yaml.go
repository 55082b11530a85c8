package layout

// yamlField is the intermediate struct for one descriptor in a YAML layout.
// Type is free-form and goes through Classify.
type yamlField struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Type        string `yaml:"type,omitempty"`
	Decimals    *int   `yaml:"decimals,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
	Start       int    `yaml:"start,omitempty"`
	End         int    `yaml:"end,omitempty"`
}

// yamlLayout is one record type.
type yamlLayout struct {
	RecordType string      `yaml:"record_type"`
	Title      string      `yaml:"title,omitempty"`
	Kind       string      `yaml:"kind,omitempty"`
	Fields     []yamlField `yaml:"fields"`
}

// yamlLayoutsFile represents the top-level structure of a layouts YAML file.
type yamlLayoutsFile struct {
	Layouts []yamlLayout `yaml:"layouts"`
}

// generatorField is one element of the JSON arrays produced by the layout
// generator script ({campo, descricao, tipo, decimais, obrigatorio,
// inicio, fim}).
type generatorField struct {
	Seq         *float64 `json:"seq"`
	Descricao   string   `json:"descricao"`
	Campo       string   `json:"campo"`
	Tipo        string   `json:"tipo"`
	Decimais    *float64 `json:"decimais"`
	Obrigatorio bool     `json:"obrigatorio"`
	Tamanho     *float64 `json:"tamanho"`
	Inicio      *float64 `json:"inicio"`
	Fim         *float64 `json:"fim"`
}

// jsonField is one descriptor of a layout in the JSON form Layout marshals
// to. Type may be a canonical name or any descriptor text.
type jsonField struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	RawType      string `json:"rawType"`
	DecimalScale *int   `json:"decimalScale"`
	Required     bool   `json:"required"`
	StartOffset  int    `json:"startOffset"`
	EndOffset    int    `json:"endOffset"`
}

// jsonLayout is one layout in a JSON layouts array.
type jsonLayout struct {
	Discriminator string      `json:"discriminator"`
	Title         string      `json:"title"`
	Kind          string      `json:"kind"`
	Fields        []jsonField `json:"fields"`
}
