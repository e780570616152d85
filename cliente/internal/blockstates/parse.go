package blockstates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// field é um par chave/valor de objeto JSON, preservando a ordem do documento.
type field struct {
	Key   string
	Value json.RawMessage
}

// object decodifica um objeto JSON mantendo a ordem das chaves.
// A ordem define o primeiro valor observado de cada propriedade.
type object []field

func (o *object) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	t, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := t.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("esperado objeto, encontrado %v", t)
	}

	*o = (*o)[:0]
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := t.(string)
		if !ok {
			return fmt.Errorf("chave inválida %v", t)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return err
		}
		*o = append(*o, field{Key: key, Value: v})
	}
	_, err = dec.Token()
	return err
}

func (o object) get(key string) (json.RawMessage, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

type rawDocument struct {
	Variants  object         `json:"variants"`
	Multipart []rawMultipart `json:"multipart"`
}

type rawMultipart struct {
	When  json.RawMessage `json:"when"`
	Apply json.RawMessage `json:"apply"`
}

// Parse normaliza um documento de blockstate (variants ou multipart).
func Parse(block string, data []byte) (*Definition, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("blockstate %s: %w", block, err)
	}

	def := &Definition{
		Block:      block,
		Properties: make(map[string]*Property),
	}

	if doc.Multipart != nil {
		def.Multipart = true
		for _, part := range doc.Multipart {
			rule, ok := parseMultipart(def.Properties, part)
			if ok {
				def.Rules = append(def.Rules, rule)
			}
		}
	} else {
		for _, v := range doc.Variants {
			apps, err := parseApplications(v.Value)
			if err != nil {
				return nil, fmt.Errorf("blockstate %s, variante %q: %w", block, v.Key, err)
			}
			def.Rules = append(def.Rules, Rule{
				Conditions:   parseVariantKey(def.Properties, v.Key),
				Applications: apps,
			})
		}
	}

	finalize(def.Properties)
	return def, nil
}

// parseVariantKey transforma "facing=north,half=bottom" em um único grupo E.
// A chave vazia gera uma regra incondicional.
func parseVariantKey(props map[string]*Property, key string) []Condition {
	cond := make(Condition)
	for _, pair := range strings.Split(key, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			continue
		}
		addKeyValue(props, k, v)
		cond[k] = []string{v}
	}
	if len(cond) == 0 {
		return nil
	}
	return []Condition{cond}
}

// parseMultipart retorna ok=false para formatos de "when" não reconhecidos.
func parseMultipart(props map[string]*Property, part rawMultipart) (Rule, bool) {
	apps, err := parseApplications(part.Apply)
	if err != nil {
		return Rule{}, false
	}
	rule := Rule{Applications: apps}

	if len(part.When) == 0 || string(part.When) == "null" {
		return rule, true
	}

	var when object
	if err := json.Unmarshal(part.When, &when); err != nil {
		return Rule{}, false
	}

	if raw, ok := when.get("OR"); ok {
		var groups []object
		if err := json.Unmarshal(raw, &groups); err != nil {
			return Rule{}, false
		}
		for _, g := range groups {
			cond := make(Condition)
			if !fillCondition(props, cond, g) {
				return Rule{}, false
			}
			rule.Conditions = append(rule.Conditions, cond)
		}
		return rule, true
	}

	if raw, ok := when.get("AND"); ok {
		var groups []object
		if err := json.Unmarshal(raw, &groups); err != nil {
			return Rule{}, false
		}
		cond := make(Condition)
		for _, g := range groups {
			if !fillCondition(props, cond, g) {
				return Rule{}, false
			}
		}
		rule.Conditions = []Condition{cond}
		return rule, true
	}

	cond := make(Condition)
	if !fillCondition(props, cond, when) {
		return Rule{}, false
	}
	rule.Conditions = []Condition{cond}
	return rule, true
}

// fillCondition adiciona as chaves de um mapa "when" ao grupo; valores "a|b" viram conjunto.
func fillCondition(props map[string]*Property, cond Condition, o object) bool {
	for _, f := range o {
		value, ok := scalar(f.Value)
		if !ok {
			return false
		}
		for _, v := range strings.Split(value, "|") {
			addKeyValue(props, f.Key, v)
			cond[f.Key] = append(cond[f.Key], v)
		}
	}
	return true
}

// scalar converte string, booleano ou número JSON em texto.
func scalar(raw json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case bool, float64:
		return strings.TrimSpace(string(raw)), true
	}
	return "", false
}

// parseApplications aceita uma aplicação única ou uma lista.
func parseApplications(raw json.RawMessage) ([]ModelApplication, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var apps []ModelApplication
		if err := json.Unmarshal(raw, &apps); err != nil {
			return nil, err
		}
		return apps, nil
	}
	var app ModelApplication
	if err := json.Unmarshal(raw, &app); err != nil {
		return nil, err
	}
	return []ModelApplication{app}, nil
}
