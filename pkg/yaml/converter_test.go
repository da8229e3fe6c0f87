package yaml

import (
	"strings"
	"testing"
)

func TestYAMLToJSON(t *testing.T) {
	input := []byte("name: api\nlaunch:\n  port: 8000\n  reload: true\n")

	got, err := YAMLToJSON(input)
	if err != nil {
		t.Fatalf("YAMLToJSON failed: %v", err)
	}

	expected := `{"launch":{"port":8000,"reload":true},"name":"api"}`
	if string(got) != expected {
		t.Errorf("expected %s, got %s", expected, string(got))
	}
}

func TestYAMLToJSONCanonicalizesKeyOrder(t *testing.T) {
	a := []byte("name: api\nworkdir: /app\n")
	b := []byte("workdir: /app\nname: api\n")

	ja, err := YAMLToJSON(a)
	if err != nil {
		t.Fatalf("YAMLToJSON failed: %v", err)
	}
	jb, err := YAMLToJSON(b)
	if err != nil {
		t.Fatalf("YAMLToJSON failed: %v", err)
	}

	if string(ja) != string(jb) {
		t.Errorf("key order changed canonical form: %s vs %s", ja, jb)
	}
}

func TestJSONToYAML(t *testing.T) {
	input := []byte(`{"system_packages":["gcc","libpq-dev"]}`)

	got, err := JSONToYAML(input)
	if err != nil {
		t.Fatalf("JSONToYAML failed: %v", err)
	}

	if !strings.Contains(string(got), "- gcc") || !strings.Contains(string(got), "- libpq-dev") {
		t.Errorf("unexpected YAML output: %s", string(got))
	}
}

func TestYAMLToJSONInvalidInput(t *testing.T) {
	if _, err := YAMLToJSON([]byte("{invalid: [yaml")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestUnmarshalYAML(t *testing.T) {
	var out struct {
		Name string `yaml:"name"`
		Port int    `yaml:"port"`
	}

	if err := UnmarshalYAML([]byte("name: api\nport: 8000\n"), &out); err != nil {
		t.Fatalf("UnmarshalYAML failed: %v", err)
	}

	if out.Name != "api" || out.Port != 8000 {
		t.Errorf("unexpected result: %+v", out)
	}
}
