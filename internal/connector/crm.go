package connector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"gocloud.dev/blob"

	"github.com/workmesh/maestro/internal/engine"
	"github.com/workmesh/maestro/internal/planner"
	"github.com/workmesh/maestro/pkg/api"
)

type (
	// Record is one CRM row in its loosely-typed wire form
	Record map[string]any

	// CRM fetches customer records from a blob-stored JSON dataset. The
	// bucket and object key are injected at construction; handlers never
	// reach for fixed paths themselves
	CRM struct {
		bucket *blob.Bucket
		key    string
		ws     *Workspace
	}

	// fetchParams narrows the fetch_crm step parameters
	fetchParams struct {
		filterPath  string
		filterValue string
	}
)

var (
	ErrDatasetNotJSON = errors.New("CRM dataset is not a JSON array")
	ErrReadDataset    = errors.New("failed to read CRM dataset")
)

// NewCRM creates the CRM connector over an already-open bucket
func NewCRM(bucket *blob.Bucket, key string, ws *Workspace) *CRM {
	return &CRM{bucket: bucket, key: key, ws: ws}
}

func (c *CRM) Name() string {
	return "crm"
}

// Register contributes the fetch_crm handler
func (c *CRM) Register(r *engine.Registry) error {
	return r.Register(planner.ActionFetchCRM, c.fetch)
}

func (c *CRM) fetch(ctx context.Context, params api.Args) (api.Args, error) {
	fp, err := narrowFetchParams(params)
	if err != nil {
		return nil, err
	}

	data, err := c.bucket.ReadAll(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadDataset, c.key, err)
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotJSON, c.key)
	}

	var records []Record
	for _, row := range parsed.Array() {
		if fp.filterPath != "" &&
			row.Get(fp.filterPath).String() != fp.filterValue {
			continue
		}
		if m, ok := row.Value().(map[string]any); ok {
			records = append(records, Record(m))
		}
	}

	if err := c.ws.Put(ctx, wsRecords, records); err != nil {
		return nil, err
	}

	return api.Args{
		"fetched":  len(records),
		"source":   c.key,
		"filtered": fp.filterPath != "",
	}, nil
}

// narrowFetchParams validates the optional filter parameter, expressed as
// "path=value" where path is a gjson path into each record
func narrowFetchParams(params api.Args) (*fetchParams, error) {
	fp := &fetchParams{}

	raw, ok := params["filter"]
	if !ok {
		return fp, nil
	}

	filter, ok := raw.(string)
	if !ok {
		return nil, badParam(
			planner.ActionFetchCRM, "filter", "expected string",
		)
	}

	path, value, found := strings.Cut(filter, "=")
	if !found || path == "" {
		return nil, badParam(
			planner.ActionFetchCRM, "filter", "expected path=value",
		)
	}

	fp.filterPath = strings.TrimSpace(path)
	fp.filterValue = strings.TrimSpace(value)
	return fp, nil
}
