package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/config"
	"github.com/mintmark-network/ip-gateway/pkg/logger"
	"github.com/mintmark-network/ip-gateway/pkg/logger/slogx"
)

// ExecClient invokes the checker script as a subprocess and parses its
// JSON stdout. Any non-zero exit or unparsable output is surfaced as
// errs.CollaboratorUnavailable; no partial results are returned.
type ExecClient struct {
	pythonBin  string
	scriptPath string
}

var _ Client = (*ExecClient)(nil)

func NewExecClient(conf config.Checker) *ExecClient {
	return &ExecClient{
		pythonBin:  conf.PythonBin,
		scriptPath: conf.ScriptPath,
	}
}

type queryOutput struct {
	Status  string `json:"status"`
	Results []struct {
		ImgID      json.Number `json:"img_id"`
		Similarity float64     `json:"similarity"`
		Cid        string      `json:"cid"`
	} `json:"results"`
	Error string `json:"error"`
}

func (c *ExecClient) Query(ctx context.Context, imagePath string, topN int, threshold float64) ([]Match, error) {
	stdout, err := c.run(ctx, imagePath,
		"--query",
		"--query_n", strconv.Itoa(topN),
		"--query_threshold", formatThreshold(threshold),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var out queryOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, errors.Wrapf(errs.CollaboratorUnavailable, "can't parse checker query output: %q", string(stdout))
	}
	if out.Error != "" {
		return nil, errors.Wrapf(errs.CollaboratorUnavailable, "checker reported: %s", out.Error)
	}

	matches := make([]Match, 0, len(out.Results))
	for _, result := range out.Results {
		matches = append(matches, Match{
			AssetID:        result.ImgID.String(),
			ContentAddress: result.Cid,
			Similarity:     result.Similarity,
		})
	}
	return matches, nil
}

type insertOutput struct {
	Status          string      `json:"status"`
	ImgID           json.Number `json:"img_id"`
	ExistingImgID   json.Number `json:"existing_img_id"`
	ExistingImgCid  string      `json:"existing_img_cid"`
	SimilarityScore float64     `json:"similarity_score"`
	Error           string      `json:"error"`
}

func (c *ExecClient) InsertWithCheck(ctx context.Context, imagePath string, threshold float64) (InsertResult, error) {
	stdout, err := c.run(ctx, imagePath,
		"--insert",
		"--insert_threshold", formatThreshold(threshold),
	)
	if err != nil {
		return InsertResult{}, errors.WithStack(err)
	}

	var out insertOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return InsertResult{}, errors.Wrapf(errs.CollaboratorUnavailable, "can't parse checker insert output: %q", string(stdout))
	}
	if out.Error != "" {
		return InsertResult{}, errors.Wrapf(errs.CollaboratorUnavailable, "checker reported: %s", out.Error)
	}

	switch InsertStatus(out.Status) {
	case StatusInserted:
		return InsertResult{
			Status:  StatusInserted,
			AssetID: out.ImgID.String(),
		}, nil
	case StatusNotInserted:
		return InsertResult{
			Status:                 StatusNotInserted,
			ExistingAssetID:        out.ExistingImgID.String(),
			ExistingContentAddress: out.ExistingImgCid,
			Similarity:             out.SimilarityScore,
		}, nil
	default:
		return InsertResult{}, errors.Wrapf(errs.CollaboratorUnavailable, "unexpected checker insert status %q", out.Status)
	}
}

func (c *ExecClient) run(ctx context.Context, imagePath string, args ...string) ([]byte, error) {
	cmdArgs := append([]string{c.scriptPath, imagePath}, args...)
	cmd := exec.CommandContext(ctx, c.pythonBin, cmdArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.DebugContext(ctx, "invoking similarity checker", slogx.String("image", imagePath), slogx.Any("args", args))
	if err := cmd.Run(); err != nil {
		message := stderr.String()
		if message == "" {
			message = err.Error()
		}
		return nil, errors.Wrapf(errs.CollaboratorUnavailable, "checker process failed: %s", message)
	}
	return stdout.Bytes(), nil
}

func formatThreshold(threshold float64) string {
	return strconv.FormatFloat(threshold, 'f', -1, 64)
}
