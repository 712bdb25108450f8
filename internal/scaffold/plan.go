package scaffold

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/generapi/generapi/blueprint"
	"github.com/generapi/generapi/internal/naming"
	"github.com/generapi/generapi/internal/openapi"
)

// Job is one render of the plan.
type Job struct {
	// Name identifies the job in logs and failures, e.g. "model OrderRequest".
	Name      string
	Blueprint string
	Context   blueprint.Context
}

const (
	requestSuffix  = "Request"
	responseSuffix = "Response"
)

// appContext binds the names every blueprint of the family shares.
func appContext(doc *openapi.Document, pkg string) blueprint.Context {
	segs := strings.Split(pkg, ".")
	ctx := blueprint.Context{
		"appName":          blueprint.String(doc.Title),
		"lowerCaseAppName": blueprint.String(strings.ToLower(naming.Identifier(doc.Title))),
		"version":          blueprint.String("v" + doc.MajorVersion()),
		"apiVersion":       blueprint.String(doc.Version),
		"importPackage":    blueprint.String(pkg),
		"packagePath":      blueprint.String(naming.PackagePath(pkg)),
	}
	for i := 0; i < 3 && i < len(segs); i++ {
		ctx["package_"+strconv.Itoa(i+1)] = blueprint.String(segs[i])
	}
	return ctx
}

// Plan lists the renders that make up the scaffold of doc: the structure files, the
// resource and one model per request and response definition.
func (g *Generator) Plan(doc *openapi.Document, opts Options) ([]Job, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	cat := g.renderer.Catalog()
	if !cat.Has(opts.Resource) {
		return nil, fmt.Errorf("resource blueprint %q is not in the catalog", opts.Resource)
	}
	for _, p := range opts.Proxies {
		if !cat.Has(proxyPrefix + p) {
			return nil, fmt.Errorf("proxy %q: blueprint %q is not in the catalog", p, proxyPrefix+p)
		}
	}

	app := appContext(doc, opts.Package)
	var jobs []Job
	for _, id := range g.structure {
		jobs = append(jobs, Job{Name: "structure " + id, Blueprint: id, Context: app})
	}

	jobs = append(jobs, resourceJob(doc, opts, app))

	for _, m := range []struct {
		names  []string
		suffix string
	}{
		{doc.RequestDefinitions(), requestSuffix},
		{doc.ResponseDefinitions(), responseSuffix},
	} {
		for _, name := range m.names {
			job, err := modelJob(doc, app, name, m.suffix)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func modelJob(doc *openapi.Document, app blueprint.Context, name, suffix string) (Job, error) {
	fields, err := doc.Fields(name, suffix)
	if err != nil {
		return Job{}, err
	}
	refs := make([]blueprint.FragmentRef, 0, len(fields))
	for _, f := range fields {
		ctx := blueprint.Context{
			"name":        blueprint.String(f.Name),
			"type":        blueprint.String(f.Type),
			"required":    blueprint.String(strconv.FormatBool(f.Required)),
			"description": blueprint.String(f.Description),
			"example":     blueprint.String(f.Example),
		}
		if len(f.Imports) > 0 {
			ctx["fieldImports"] = blueprint.List(f.Imports...)
		}
		refs = append(refs, blueprint.Fragment(FieldBlueprint, ctx))
	}
	model := name + suffix
	ctx := merge(app, blueprint.Context{
		"modelName":  blueprint.String(model),
		"parameters": blueprint.Fragments(refs...),
	})
	return Job{Name: "model " + model, Blueprint: ModelBlueprint, Context: ctx}, nil
}

func resourceJob(doc *openapi.Document, opts Options, app blueprint.Context) Job {
	front := func(model string) string {
		return fmt.Sprintf("import %s.%s.application.%s.front.%s;",
			opts.Package, app["lowerCaseAppName"].Str(), app["version"].Str(), model)
	}

	proxy := opts.Proxies[0]
	if opts.Resource != DefaultResource {
		// the v1 layouts inject a fixed ApimService field
		proxy = "apim"
	}

	var methods []blueprint.FragmentRef
	var imports []string
	for _, op := range doc.Operations {
		if op.RequestRef == "" {
			continue
		}
		request := op.RequestRef + requestSuffix
		response := "Object"
		modelImports := []string{front(request)}
		if ref, ok := successResponse(op); ok {
			response = ref + responseSuffix
			modelImports = append(modelImports, front(response))
		}
		imports = append(imports, modelImports...)

		id := op.OperationID
		if id == "" {
			id = naming.Camel(op.Method + " " + op.Path)
		}
		summary := op.Summary
		if summary == "" {
			summary = id
		}
		methods = append(methods, blueprint.Fragment(MethodBlueprint, blueprint.Context{
			"httpMethod":    blueprint.String(op.Method),
			"operationPath": blueprint.String(openapi.JavaString(op.Path)),
			"operationId":   blueprint.String(naming.Identifier(id)),
			"summary":       blueprint.String(openapi.JavaString(summary)),
			"requestModel":  blueprint.String(request),
			"responseModel": blueprint.String(response),
			"proxy":         blueprint.String(proxy),
			"modelImports":  blueprint.List(modelImports...),
		}))
	}

	ctx := merge(app, nil)
	if opts.Resource == DefaultResource {
		proxies := make([]blueprint.FragmentRef, 0, len(opts.Proxies))
		for _, p := range opts.Proxies {
			proxies = append(proxies, blueprint.Fragment(proxyPrefix+p, blueprint.Context{"field": blueprint.String(p)}))
		}
		ctx["proxies"] = blueprint.Fragments(proxies...)
		ctx["methods"] = blueprint.Fragments(methods...)
	} else {
		ctx["apim"] = blueprint.String("@Inject\n    ApimService apim;")
		ctx["resourceImports"] = blueprint.List(imports...)
		ctx["resourceTemplate"] = blueprint.Fragments(methods...)
	}
	return Job{Name: "resource " + opts.Resource, Blueprint: opts.Resource, Context: ctx}
}

// successResponse returns the first 2xx JSON response schema of op.
func successResponse(op openapi.Operation) (string, bool) {
	for _, r := range op.ResponseRefs {
		if strings.HasPrefix(r.Code, "2") {
			return r.Schema, true
		}
	}
	return "", false
}

func merge(base, extra blueprint.Context) blueprint.Context {
	out := make(blueprint.Context, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
