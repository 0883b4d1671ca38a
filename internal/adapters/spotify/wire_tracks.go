package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// getAudioFeaturesBatch fetches audio features for ids in chunks of 100,
// with up to four chunks in flight. Ids without analysis are absent from
// the result.
func (c *Client) getAudioFeaturesBatch(ctx context.Context, ids []string) (map[string]spotifyAudioFeatures, error) {
	result := make(map[string]spotifyAudioFeatures, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(audioFeaturesConcurrency)

	for start := 0; start < len(ids); start += audioFeaturesBatchSize {
		batch := ids[start:min(start+audioFeaturesBatchSize, len(ids))]
		g.Go(func() error {
			q := url.Values{}
			q.Set("ids", strings.Join(batch, ","))
			u := fmt.Sprintf("%s/audio-features?%s", c.baseURL, q.Encode())

			var resp audioFeaturesResponse
			if err := c.getJSON(gctx, u, "audio_features", &resp); err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			for _, f := range resp.AudioFeatures {
				if f == nil || f.ID == "" {
					continue
				}
				result[f.ID] = *f
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
