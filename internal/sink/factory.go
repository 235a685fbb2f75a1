package sink

import (
	"context"
	"fmt"

	"acsgen/internal/config"
)

// Open selects and constructs a Sink from the output configuration.
// runID is attached to sink metadata where the driver supports it.
func Open(ctx context.Context, out config.Output, runID string) (Sink, error) {
	switch out.Driver {
	case "fs":
		return NewFilesystem(out.Dir)
	case "memory":
		return NewMemory(), nil
	case "s3":
		return NewS3(ctx, S3Config{
			Bucket:   out.Bucket,
			Prefix:   out.Prefix,
			Region:   out.Region,
			Endpoint: out.Endpoint,
			RunID:    runID,
		})
	case "postgres":
		return NewPostgres(ctx, out.URL)
	default:
		return nil, fmt.Errorf("unknown output driver %q", out.Driver)
	}
}
