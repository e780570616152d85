package blockstates

// ModelApplication referencia um modelo com rotação opcional em passos de 90°.
type ModelApplication struct {
	Model  string `json:"model"`
	X      int    `json:"x,omitempty"`
	Y      int    `json:"y,omitempty"`
	UVLock bool   `json:"uvlock,omitempty"`
	Weight int    `json:"weight,omitempty"`
}

// Property é o domínio observado de uma propriedade e seu valor padrão.
type Property struct {
	Domain  []string
	Default string
}

// Has verifica se o valor pertence ao domínio.
func (p *Property) Has(value string) bool {
	for _, v := range p.Domain {
		if v == value {
			return true
		}
	}
	return false
}

// Condition exige, para cada chave, um dos valores permitidos (E entre chaves).
type Condition map[string][]string

// Matches verifica se todas as chaves da condição aceitam o valor atual.
func (c Condition) Matches(values map[string]string) bool {
	for key, allowed := range c {
		current, ok := values[key]
		if !ok {
			return false
		}
		found := false
		for _, a := range allowed {
			if a == current {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Rule aplica seus modelos quando qualquer grupo de condições casa (OU entre grupos).
// Sem grupos, a regra sempre casa.
type Rule struct {
	Conditions   []Condition
	Applications []ModelApplication
}

// Active verifica se a regra casa com os valores atuais.
func (r Rule) Active(values map[string]string) bool {
	if len(r.Conditions) == 0 {
		return true
	}
	for _, c := range r.Conditions {
		if c.Matches(values) {
			return true
		}
	}
	return false
}

// Definition é o blockstate normalizado: domínios das propriedades e regras em ordem de declaração.
type Definition struct {
	Block      string
	Multipart  bool
	Properties map[string]*Property
	Rules      []Rule
}

// Defaults retorna o valor padrão de cada propriedade.
func (d *Definition) Defaults() map[string]string {
	out := make(map[string]string, len(d.Properties))
	for k, p := range d.Properties {
		out[k] = p.Default
	}
	return out
}

// Match retorna a primeira aplicação de cada regra ativa, em ordem de declaração.
// Chaves ausentes em values assumem o valor padrão.
func (d *Definition) Match(values map[string]string) []ModelApplication {
	state := d.Defaults()
	for k, v := range values {
		state[k] = v
	}

	var out []ModelApplication
	for _, rule := range d.Rules {
		if len(rule.Applications) == 0 || !rule.Active(state) {
			continue
		}
		// Alternativas com peso são sorteio do jogo; usamos sempre a primeira
		out = append(out, rule.Applications[0])
	}
	return out
}

// withDefaults copia a definição sobrescrevendo padrões existentes.
func (d *Definition) withDefaults(overrides map[string]string) *Definition {
	cp := &Definition{
		Block:      d.Block,
		Multipart:  d.Multipart,
		Properties: make(map[string]*Property, len(d.Properties)),
		Rules:      d.Rules,
	}
	for k, p := range d.Properties {
		np := &Property{Domain: p.Domain, Default: p.Default}
		if v, ok := overrides[k]; ok {
			np.Default = v
		}
		cp.Properties[k] = np
	}
	return cp
}

// addKeyValue registra um valor observado no domínio da propriedade,
// alargando domínios booleanos e os de parede (low/tall ganham "none" no início).
func addKeyValue(props map[string]*Property, key, value string) {
	p, ok := props[key]
	if !ok {
		p = &Property{}
		props[key] = p
	}

	add := func(v string) {
		if !p.Has(v) {
			p.Domain = append(p.Domain, v)
		}
	}

	add(value)
	switch value {
	case "true":
		add("false")
	case "false":
		add("true")
	case "low", "tall":
		if !p.Has("none") {
			p.Domain = append([]string{"none"}, p.Domain...)
		}
	}
}

// finalize descarta chaves vazias e calcula os padrões.
func finalize(props map[string]*Property) {
	delete(props, "")
	for _, p := range props {
		switch {
		case p.Has("true") && p.Has("false"):
			p.Default = "false"
		case p.Has("none"):
			p.Default = "none"
		case len(p.Domain) > 0:
			p.Default = p.Domain[0]
		}
	}
}
