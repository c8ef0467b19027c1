package publish

import (
	"strings"

	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/service/validator"
	"github.com/viant/toolbox"
)

// DefaultIdentifier is used when a resource names no identifier.
const DefaultIdentifier = "default"

const privateSuffix = "_PRIVATE"

// Job is one resource to publish.
type Job struct {
	Service     string
	Name        string
	Identifier  string
	Data64      string
	Filename    string
	Title       string
	Description string
	Category    string
	Tags        []string
}

// Resource is the app's description of a resource. File is either a base64
// string or an object holding data64 and optionally a name.
type Resource struct {
	Service     string      `json:"service"`
	Name        string      `json:"name"`
	Identifier  *string     `json:"identifier"`
	Data64      string      `json:"data64"`
	File        interface{} `json:"file"`
	Filename    string      `json:"filename"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Tag1        string      `json:"tag1"`
	Tag2        string      `json:"tag2"`
	Tag3        string      `json:"tag3"`
	Tag4        string      `json:"tag4"`
	Tag5        string      `json:"tag5"`
}

// Job validates the resource and converts it into a publish job. Encryption
// is applied later, so private services are only checked against encrypt.
func (r *Resource) Job(encrypt bool) (*Job, error) {
	if missing := validator.Missing(map[string]interface{}{"service": r.Service, "name": r.Name}, "service", "name"); len(missing) > 0 {
		return nil, fault.MissingFields(missing)
	}
	data64 := r.Data64
	filename := r.Filename
	if data64 == "" {
		data64, filename = fileData(r.File, filename)
	}
	if data64 == "" {
		return nil, fault.InvalidInput("No data or file was submitted")
	}
	if !encrypt && strings.HasSuffix(r.Service, privateSuffix) {
		return nil, fault.Unauthorized("Only encrypted data can go into private services")
	}
	identifier := DefaultIdentifier
	if r.Identifier != nil {
		identifier = *r.Identifier
	}
	ret := &Job{
		Service:     r.Service,
		Name:        r.Name,
		Identifier:  identifier,
		Data64:      data64,
		Filename:    filename,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
	}
	for _, tag := range []string{r.Tag1, r.Tag2, r.Tag3, r.Tag4, r.Tag5} {
		if tag != "" {
			ret.Tags = append(ret.Tags, tag)
		}
	}
	return ret, nil
}

// Params returns the arbitrary transaction parameters of the job.
func (j *Job) Params(fee string) map[string]interface{} {
	return map[string]interface{}{
		"service":     j.Service,
		"name":        j.Name,
		"identifier":  j.Identifier,
		"data64":      j.Data64,
		"filename":    j.Filename,
		"title":       j.Title,
		"description": j.Description,
		"category":    j.Category,
		"tags":        j.Tags,
		"fee":         fee,
	}
}

func fileData(file interface{}, filename string) (string, string) {
	switch actual := file.(type) {
	case string:
		return actual, filename
	case map[string]interface{}:
		data64 := ""
		if value, ok := actual["data64"]; ok && value != nil {
			data64 = toolbox.AsString(value)
		}
		if filename == "" {
			if name, ok := actual["name"].(string); ok {
				filename = name
			}
		}
		return data64, filename
	}
	return "", filename
}
