package config

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParametersByPathAPI is the slice of the SSM client used to read secrets.
type ParametersByPathAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSM overlays every parameter stored under prefix onto config. The last
// path segment becomes the key, so /portfolio/prod/RESEND_API_KEY is read as
// RESEND_API_KEY. Values already present in config are kept.
func LoadSSM(ctx context.Context, client ParametersByPathAPI, config map[string]string, prefix string) (int, error) {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return loaded, fmt.Errorf("read ssm parameters under %s: %w", prefix, err)
		}
		for _, p := range page.Parameters {
			key := path.Base(aws.ToString(p.Name))
			if existing, ok := config[key]; ok && existing != "" {
				continue
			}
			config[key] = aws.ToString(p.Value)
			loaded++
		}
	}

	log.Info().Str("path", prefix).Int("parameters", loaded).Msg("Loaded configuration from SSM")
	return loaded, nil
}
