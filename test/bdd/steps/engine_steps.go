package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/dmarrick/novaforge/internal/adapters/persistence"
	"github.com/dmarrick/novaforge/internal/application/engine"
	extractioncommands "github.com/dmarrick/novaforge/internal/application/extraction/commands"
	extractionqueries "github.com/dmarrick/novaforge/internal/application/extraction/queries"
	jobcommands "github.com/dmarrick/novaforge/internal/application/jobs/commands"
	jobqueries "github.com/dmarrick/novaforge/internal/application/jobs/queries"
	productioncommands "github.com/dmarrick/novaforge/internal/application/production/commands"
	samplecommands "github.com/dmarrick/novaforge/internal/application/samples/commands"
	samplequeries "github.com/dmarrick/novaforge/internal/application/samples/queries"
	"github.com/dmarrick/novaforge/internal/domain/capacity"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/ledger"
	"github.com/dmarrick/novaforge/internal/domain/sample"
	"github.com/dmarrick/novaforge/internal/domain/shared"
	"github.com/dmarrick/novaforge/internal/infrastructure/database"
	"github.com/dmarrick/novaforge/test/helpers"
)

// engineContext drives scenarios against a fully assembled engine over an
// in-memory database. Each scenario gets a fresh database, catalog, and
// mock clock.
type engineContext struct {
	eng       *engine.Engine
	ledger    ledger.Store
	tracker   capacity.Tracker
	samples   sample.Repository
	equipment *helpers.MockEquipmentProvider
	clock     *shared.MockClock

	ownerID   shared.OwnerID
	lastJobID string
	err       error

	lastEstimate  *extractionqueries.EstimateSiteResponse
	lastAppraisal *samplecommands.AppraiseSampleResponse
	lastSale      *samplecommands.SellSampleResponse
	lastRefine    *samplecommands.RefineOreResponse
}

func (ec *engineContext) reset() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to open test database: %w", err)
	}

	ec.ledger = persistence.NewGormLedgerStore(db)
	ec.tracker = persistence.NewGormCapacityTracker(db)
	ec.samples = persistence.NewGormSampleRepository(db)
	ec.equipment = helpers.NewMockEquipmentProvider()
	ec.clock = shared.NewMockClock(time.Date(2186, 3, 14, 12, 0, 0, 0, time.UTC))

	ec.eng, err = engine.New(db, engine.Options{
		Catalog:   helpers.NewTestCatalog(),
		Equipment: ec.equipment,
		Clock:     ec.clock,
		YieldSeed: 42,
	})
	if err != nil {
		return fmt.Errorf("failed to assemble engine: %w", err)
	}

	ec.ownerID = shared.OwnerID{}
	ec.lastJobID = ""
	ec.err = nil
	ec.lastEstimate = nil
	ec.lastAppraisal = nil
	ec.lastSale = nil
	ec.lastRefine = nil
	return nil
}

// Setup steps

func (ec *engineContext) anOwnerWithID(id int) error {
	owner, err := shared.NewOwnerID(id)
	if err != nil {
		return err
	}
	ec.ownerID = owner
	return nil
}

func (ec *engineContext) theOwnerHoldsUnitsOf(qty int, kind string) error {
	return ec.ledger.Credit(context.Background(), ec.ownerID, kind, qty)
}

func (ec *engineContext) theOwnerHasClearance(clearance string) error {
	ec.equipment.Clearances = append(ec.equipment.Clearances, clearance)
	return nil
}

func (ec *engineContext) theOwnerHoldsAnUnappraisedSample(sampleID string, amount int, kind string) error {
	s := sample.NewOreSample(sampleID, ec.ownerID, kind, amount, 0.6, ec.clock.Now())
	return ec.samples.Save(context.Background(), s)
}

// Action steps

func (ec *engineContext) iStartProductionAtFacility(recipeID, facilityID string) error {
	return ec.iStartProductionAtFacilityWithQuality(recipeID, facilityID, "STANDARD")
}

func (ec *engineContext) iStartProductionAtFacilityWithQuality(recipeID, facilityID, quality string) error {
	tier, err := catalog.ParseQualityTier(quality)
	if err != nil {
		return err
	}

	resp, err := ec.eng.StartProduction(context.Background(), &productioncommands.StartProductionCommand{
		OwnerID:    ec.ownerID,
		FacilityID: facilityID,
		RecipeID:   recipeID,
		Quantity:   1,
		Quality:    tier,
	})
	if err != nil {
		ec.err = err
		return nil
	}
	ec.lastJobID = resp.JobID
	return nil
}

func (ec *engineContext) iStartExtractionAtSite(resourceKind, siteID string) error {
	resp, err := ec.eng.StartExtraction(context.Background(), &extractioncommands.StartExtractionCommand{
		OwnerID:      ec.ownerID,
		SiteID:       siteID,
		ResourceKind: resourceKind,
		Quantity:     1,
	})
	if err != nil {
		ec.err = err
		return nil
	}
	ec.lastJobID = resp.JobID
	return nil
}

func (ec *engineContext) iCancelTheJob() error {
	if ec.lastJobID == "" {
		return fmt.Errorf("no job to cancel")
	}
	_, err := ec.eng.CancelJob(context.Background(), &jobcommands.CancelJobCommand{JobID: ec.lastJobID})
	if err != nil {
		ec.err = err
	}
	return nil
}

func (ec *engineContext) iEstimateSite(siteID string) error {
	resp, err := ec.eng.EstimateSite(context.Background(), &extractionqueries.EstimateSiteQuery{
		OwnerID: ec.ownerID,
		SiteID:  siteID,
	})
	if err != nil {
		ec.err = err
		return nil
	}
	ec.lastEstimate = resp
	return nil
}

func (ec *engineContext) iAppraiseSample(sampleID string) error {
	resp, err := ec.eng.AppraiseSample(context.Background(), &samplecommands.AppraiseSampleCommand{
		OwnerID:  ec.ownerID,
		SampleID: sampleID,
	})
	if err != nil {
		ec.err = err
		return nil
	}
	ec.lastAppraisal = resp
	return nil
}

func (ec *engineContext) iSellSample(sampleID string) error {
	resp, err := ec.eng.SellSample(context.Background(), &samplecommands.SellSampleCommand{
		OwnerID:  ec.ownerID,
		SampleID: sampleID,
	})
	if err != nil {
		ec.err = err
		return nil
	}
	ec.lastSale = resp
	return nil
}

func (ec *engineContext) iRefineUnitsOfSampleAtRefinery(qty int, sampleID, refineryID string) error {
	resp, err := ec.eng.RefineOre(context.Background(), &samplecommands.RefineOreCommand{
		OwnerID:    ec.ownerID,
		SampleID:   sampleID,
		RefineryID: refineryID,
		Quantity:   qty,
	})
	if err != nil {
		ec.err = err
		return nil
	}
	ec.lastRefine = resp
	return nil
}

// Assertion steps

func (ec *engineContext) theJobShouldBeAdmitted() error {
	if ec.err != nil {
		return fmt.Errorf("expected admission, got error: %v", ec.err)
	}
	if ec.lastJobID == "" {
		return fmt.Errorf("expected a job id")
	}
	return nil
}

func (ec *engineContext) theOperationShouldFailWithError(expected string) error {
	if ec.err == nil {
		return fmt.Errorf("expected error containing %q, got none", expected)
	}
	if !strings.Contains(ec.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, ec.err.Error())
	}
	ec.err = nil
	return nil
}

func (ec *engineContext) theJobStatusShouldBe(expected string) error {
	snapshot, err := ec.eng.GetJobStatus(context.Background(), &jobqueries.GetJobStatusQuery{JobID: ec.lastJobID})
	if err != nil {
		return err
	}
	if string(snapshot.Status) != expected {
		return fmt.Errorf("expected status %s, got %s", expected, snapshot.Status)
	}
	return nil
}

func (ec *engineContext) theOwnerShouldHoldUnitsOf(expected int, kind string) error {
	balance, err := ec.ledger.Balance(context.Background(), ec.ownerID, kind)
	if err != nil {
		return err
	}
	if balance != expected {
		return fmt.Errorf("expected %d units of %s, got %d", expected, kind, balance)
	}
	return nil
}

func (ec *engineContext) theHostShouldHaveActiveClaims(hostID string, expected int) error {
	count, err := ec.tracker.ActiveCount(context.Background(), hostID)
	if err != nil {
		return err
	}
	if count != expected {
		return fmt.Errorf("expected %d active claims at %s, got %d", expected, hostID, count)
	}
	return nil
}

func (ec *engineContext) theAppraisedValueShouldBePositive() error {
	if ec.err != nil {
		return fmt.Errorf("expected an appraised value, got error: %v", ec.err)
	}
	if ec.lastAppraisal == nil || ec.lastAppraisal.Value <= 0 {
		return fmt.Errorf("expected a positive appraised value, got %+v", ec.lastAppraisal)
	}
	return nil
}

func (ec *engineContext) theSaleShouldPayTheAppraisedValue() error {
	if ec.err != nil {
		return fmt.Errorf("expected a sale, got error: %v", ec.err)
	}
	if ec.lastAppraisal == nil || ec.lastSale == nil {
		return fmt.Errorf("appraisal and sale must both have happened")
	}
	if ec.lastSale.CreditsEarned != ec.lastAppraisal.Value {
		return fmt.Errorf("sale paid %d, appraisal fixed %d", ec.lastSale.CreditsEarned, ec.lastAppraisal.Value)
	}
	balance, err := ec.ledger.Balance(context.Background(), ec.ownerID, ledger.CurrencyKind)
	if err != nil {
		return err
	}
	if balance != ec.lastSale.CreditsEarned {
		return fmt.Errorf("expected %d credits in the ledger, got %d", ec.lastSale.CreditsEarned, balance)
	}
	return nil
}

func (ec *engineContext) theRefinedOutputShouldBePositiveUnitsOf(kind string) error {
	if ec.err != nil {
		return fmt.Errorf("expected refined output, got error: %v", ec.err)
	}
	if ec.lastRefine == nil {
		return fmt.Errorf("no refine outcome recorded")
	}
	if ec.lastRefine.RefinedKind != kind {
		return fmt.Errorf("expected refined kind %s, got %s", kind, ec.lastRefine.RefinedKind)
	}
	if ec.lastRefine.Output <= 0 {
		return fmt.Errorf("expected positive output, got %d", ec.lastRefine.Output)
	}
	balance, err := ec.ledger.Balance(context.Background(), ec.ownerID, kind)
	if err != nil {
		return err
	}
	if balance != ec.lastRefine.Output {
		return fmt.Errorf("expected %d units of %s credited, got %d", ec.lastRefine.Output, kind, balance)
	}
	return nil
}

func (ec *engineContext) theOwnerShouldNotListSample(sampleID string) error {
	resp, err := ec.eng.ListSamples(context.Background(), &samplequeries.ListSamplesQuery{OwnerID: ec.ownerID})
	if err != nil {
		return err
	}
	for _, s := range resp.Samples {
		if s.ID() == sampleID {
			return fmt.Errorf("sample %s still listed", sampleID)
		}
	}
	return nil
}

func (ec *engineContext) theEstimateShouldBePositive() error {
	if ec.err != nil {
		return fmt.Errorf("expected an estimate, got error: %v", ec.err)
	}
	if ec.lastEstimate == nil || ec.lastEstimate.Estimated <= 0 {
		return fmt.Errorf("expected a positive estimate, got %+v", ec.lastEstimate)
	}
	return nil
}

func (ec *engineContext) theEstimateShouldListResource(kind string) error {
	if ec.lastEstimate == nil {
		return fmt.Errorf("no estimate recorded")
	}
	for _, r := range ec.lastEstimate.Resources {
		if r == kind {
			return nil
		}
	}
	return fmt.Errorf("resource %s not in estimate %v", kind, ec.lastEstimate.Resources)
}

// InitializeEngineScenario registers the engine step definitions
func InitializeEngineScenario(sc *godog.ScenarioContext) {
	ctx := &engineContext{}

	sc.Before(func(gCtx context.Context, _ *godog.Scenario) (context.Context, error) {
		return gCtx, ctx.reset()
	})

	// Setup steps
	sc.Step(`^an owner with ID (\d+)$`, ctx.anOwnerWithID)
	sc.Step(`^the owner holds (\d+) units of "([^"]*)"$`, ctx.theOwnerHoldsUnitsOf)
	sc.Step(`^the owner has clearance "([^"]*)"$`, ctx.theOwnerHasClearance)
	sc.Step(`^the owner holds an unappraised sample "([^"]*)" of (\d+) units of "([^"]*)"$`, ctx.theOwnerHoldsAnUnappraisedSample)

	// Action steps
	sc.Step(`^I start production of "([^"]*)" at facility "([^"]*)"$`, ctx.iStartProductionAtFacility)
	sc.Step(`^I start production of "([^"]*)" at facility "([^"]*)" with quality "([^"]*)"$`, ctx.iStartProductionAtFacilityWithQuality)
	sc.Step(`^I start extraction of "([^"]*)" at site "([^"]*)"$`, ctx.iStartExtractionAtSite)
	sc.Step(`^I cancel the job$`, ctx.iCancelTheJob)
	sc.Step(`^I estimate site "([^"]*)"$`, ctx.iEstimateSite)
	sc.Step(`^I appraise sample "([^"]*)"$`, ctx.iAppraiseSample)
	sc.Step(`^I sell sample "([^"]*)"$`, ctx.iSellSample)
	sc.Step(`^I refine (\d+) units of sample "([^"]*)" at refinery "([^"]*)"$`, ctx.iRefineUnitsOfSampleAtRefinery)

	// Assertion steps
	sc.Step(`^the job should be admitted$`, ctx.theJobShouldBeAdmitted)
	sc.Step(`^the operation should fail with error "([^"]*)"$`, ctx.theOperationShouldFailWithError)
	sc.Step(`^the job status should be "([^"]*)"$`, ctx.theJobStatusShouldBe)
	sc.Step(`^the owner should hold (\d+) units of "([^"]*)"$`, ctx.theOwnerShouldHoldUnitsOf)
	sc.Step(`^the host "([^"]*)" should have (\d+) active claims$`, ctx.theHostShouldHaveActiveClaims)
	sc.Step(`^the appraised value should be positive$`, ctx.theAppraisedValueShouldBePositive)
	sc.Step(`^the sale should pay the appraised value$`, ctx.theSaleShouldPayTheAppraisedValue)
	sc.Step(`^the refined output should be positive units of "([^"]*)"$`, ctx.theRefinedOutputShouldBePositiveUnitsOf)
	sc.Step(`^the owner should not list sample "([^"]*)"$`, ctx.theOwnerShouldNotListSample)
	sc.Step(`^the estimate should be positive$`, ctx.theEstimateShouldBePositive)
	sc.Step(`^the estimate should list resource "([^"]*)"$`, ctx.theEstimateShouldListResource)
}
