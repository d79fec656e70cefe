package vector

import (
	"context"
	"testing"

	"github.com/weaviate/weaviate/entities/models"
)

type MockSchemaClient struct {
	CreatedClass    *models.Class
	ExistingClass   *models.Class
	AddedProperties []*models.Property
}

func (m *MockSchemaClient) ClassExists(ctx context.Context, className string) (bool, error) {
	if m.ExistingClass != nil {
		return true, nil
	}
	return false, nil
}

func (m *MockSchemaClient) CreateClass(ctx context.Context, class *models.Class) error {
	m.CreatedClass = class
	return nil
}

func (m *MockSchemaClient) GetClass(ctx context.Context, className string) (*models.Class, error) {
	return m.ExistingClass, nil
}

func (m *MockSchemaClient) AddProperty(ctx context.Context, className string, property *models.Property) error {
	m.AddedProperties = append(m.AddedProperties, property)
	return nil
}

func TestEnsureSchema_CreatesClass(t *testing.T) {
	client := &MockSchemaClient{}
	if err := EnsureSchema(context.Background(), client); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	if client.CreatedClass == nil {
		t.Fatal("Class not created")
	}
	if client.CreatedClass.Class != RefinementChunkClass {
		t.Errorf("unexpected class name %q", client.CreatedClass.Class)
	}

	expectedProps := map[string]string{
		"contentItemId": "string",
		"refinementId":  "string",
		"chunkIndex":    "int",
		"qualityScore":  "number",
	}

	for _, prop := range client.CreatedClass.Properties {
		if expectedType, ok := expectedProps[prop.Name]; ok {
			if len(prop.DataType) == 0 || prop.DataType[0] != expectedType {
				t.Errorf("Property %s has wrong DataType: %v (expected %s)", prop.Name, prop.DataType, expectedType)
			}
		}
	}
}

func TestEnsureSchema_AddsMissingProperties(t *testing.T) {
	existingClass := &models.Class{
		Class: RefinementChunkClass,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "contentItemId", DataType: []string{"string"}},
		},
	}

	client := &MockSchemaClient{
		ExistingClass: existingClass,
	}

	if err := EnsureSchema(context.Background(), client); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	if client.CreatedClass != nil {
		t.Fatal("Should not recreate class if it exists")
	}

	if len(client.AddedProperties) == 0 {
		t.Fatal("Should have added properties")
	}

	addedNames := make(map[string]bool)
	for _, p := range client.AddedProperties {
		addedNames[p.Name] = true
	}

	if !addedNames["refinementId"] {
		t.Error("Missing 'refinementId' property")
	}
	if !addedNames["qualityScore"] {
		t.Error("Missing 'qualityScore' property")
	}
	if addedNames["content"] {
		t.Error("Should not re-add existing 'content' property")
	}
}

func TestEnsureSchema_NoopWhenComplete(t *testing.T) {
	existingClass := &models.Class{
		Class: RefinementChunkClass,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "contentItemId", DataType: []string{"string"}},
			{Name: "refinementId", DataType: []string{"string"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "qualityScore", DataType: []string{"number"}},
		},
	}

	client := &MockSchemaClient{ExistingClass: existingClass}

	if err := EnsureSchema(context.Background(), client); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	if len(client.AddedProperties) != 0 {
		t.Errorf("expected no properties added, got %v", client.AddedProperties)
	}
}
