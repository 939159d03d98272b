package pkg

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/hansbonini/odetools/pkg/common"
	"github.com/hansbonini/odetools/pkg/ps3"
)

// FixOptions controls an image repair
type FixOptions struct {
	// RegionsPath names a sidecar region table; empty reads sector 0 of the image
	RegionsPath string
	// DryRun classifies the regions without opening the image for writing
	DryRun bool
}

// ImageProcessor handles region classification and sector repair of
// PlayStation 3 disc images
type ImageProcessor struct {
	fs afero.Fs
}

// NewImageProcessor creates a new image processor instance
func NewImageProcessor(fs afero.Fs) *ImageProcessor {
	return &ImageProcessor{fs: fs}
}

// ClassifyRegions reads the region table at the start of path, which is
// either a disc image or a standalone table
func (p *ImageProcessor) ClassifyRegions(path string) (report *RegionReport, err error) {
	file, err := p.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenImage, err)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	regions, err := ps3.ClassifyRegions(file)
	if err != nil {
		return nil, fmt.Errorf("failed to classify regions: %w", err)
	}

	return &RegionReport{
		Source:           path,
		Regions:          regions,
		EncryptedSectors: regions.EncryptedSectors(),
	}, nil
}

// Fix corrects the encrypted sectors of an image in place using the lba
// offset from its NFO sidecar. The region table is fully validated before
// the image is opened for writing.
func (p *ImageProcessor) Fix(nfoPath, imagePath string, opts FixOptions) (*FixReport, error) {
	lbaOffset, err := p.readLBAOffset(nfoPath)
	if err != nil {
		return nil, err
	}

	source := imagePath
	if opts.RegionsPath != "" {
		source = opts.RegionsPath
	}
	regions, err := p.ClassifyRegions(source)
	if err != nil {
		return nil, err
	}

	report := &FixReport{
		Image:     imagePath,
		LBAOffset: lbaOffset,
		DryRun:    opts.DryRun,
		Regions:   *regions,
	}
	if opts.DryRun {
		common.LogInfo("dry run: %d encrypted sectors in %d regions left untouched",
			regions.EncryptedSectors, len(regions.Regions.Encrypted))
		return report, nil
	}

	summary, err := p.correct(imagePath, lbaOffset, regions.Regions.Encrypted)
	if summary == nil {
		return nil, err
	}
	report.Summary = summary
	report.Diagnostics = diagnosticEntries(summary.Failures)
	return report, err
}

func (p *ImageProcessor) readLBAOffset(nfoPath string) (offset uint32, err error) {
	file, err := p.fs.OpenFile(nfoPath, os.O_RDONLY, 0)
	if err != nil {
		return 0, common.FormatError(common.ErrFailedToOpenNFO, err)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	return ps3.ReadLBAOffset(file)
}

func (p *ImageProcessor) correct(imagePath string, lbaOffset uint32, regions []ps3.Region) (summary *ps3.CorrectionSummary, err error) {
	image, err := p.fs.OpenFile(imagePath, os.O_RDWR, 0)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenImage, err)
	}
	defer func() {
		err = multierr.Append(err, image.Close())
	}()

	result := ps3.NewCorrector(image, lbaOffset).Correct(regions)
	return &result, nil
}
