package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zfogg/pageshare/pkg/client"
	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/logger"
)

// GetFeed retrieves a feed by kind with pagination
func GetFeed(ctx context.Context, kind string, page, pageSize int) (*FeedResponse, error) {
	logger.Debug("Fetching feed", "kind", kind, "page", page)

	var response FeedResponse

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page":      strconv.Itoa(page),
			"page_size": strconv.Itoa(pageSize),
		}).
		SetResult(&response).
		Get(fmt.Sprintf("/api/v1/feed/%s", kind))

	if err != nil {
		return nil, clierrors.CategorizeError(err)
	}

	if !resp.IsSuccess() {
		return nil, clierrors.HTTPError(resp.StatusCode(), resp.Status())
	}

	return &response, nil
}
