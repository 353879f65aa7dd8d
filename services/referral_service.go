package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/feastly/ambassador_backend/config"
	"github.com/feastly/ambassador_backend/metrics"
	"github.com/feastly/ambassador_backend/models"
	"github.com/feastly/ambassador_backend/repositories"
	"github.com/feastly/ambassador_backend/utils"
)

// ReferralService credits referral signup bonuses. Crediting is a best-effort
// side effect of entity creation: it runs after the referred entity's insert
// committed and its failure is logged, never surfaced to the caller.
type ReferralService struct {
	db      *mongo.Client
	metrics *metrics.AmbassadorMetrics
}

func NewReferralService(db *mongo.Client, m *metrics.AmbassadorMetrics) *ReferralService {
	return &ReferralService{db: db, metrics: m}
}

// BonusTypeFor maps a (referrer kind, referred kind) pair onto the bonus
// table key. Returns "" for unknown kinds.
func BonusTypeFor(referrerKind, referredKind utils.ReferralKind) string {
	switch {
	case referrerKind == utils.AmbassadorReferral && referredKind == utils.AmbassadorReferral:
		return models.BonusAmbassadorToAmbassador
	case referrerKind == utils.VendorReferral && referredKind == utils.AmbassadorReferral:
		return models.BonusVendorToAmbassador
	case referrerKind == utils.AmbassadorReferral && referredKind == utils.VendorReferral:
		return models.BonusAmbassadorToVendor
	case referrerKind == utils.VendorReferral && referredKind == utils.VendorReferral:
		return models.BonusVendorToVendor
	default:
		return ""
	}
}

// CreditSignupBonus resolves the referrer behind rawCode and credits it for
// referring the given entity. Every lookup miss (blank code, unknown prefix,
// unresolvable code, missing bonus table row) degrades to a logged no-op.
func (s *ReferralService) CreditSignupBonus(ctx context.Context, referredID primitive.ObjectID, referredKind utils.ReferralKind, rawCode string) {
	code := utils.NormalizeReferralCode(rawCode)
	if code == "" {
		return
	}

	referrerKind := utils.ClassifyReferralCode(code)
	if referrerKind == utils.UnknownReferral {
		log.Printf("referral: ignoring code %q with unknown prefix", code)
		return
	}

	referrerID, err := s.resolveReferrer(ctx, referrerKind, code)
	if err != nil {
		log.Printf("referral: could not resolve code %q: %v", code, err)
		return
	}

	bonusType := BonusTypeFor(referrerKind, referredKind)
	amount, err := s.lookupBonusAmount(ctx, bonusType)
	if err != nil {
		log.Printf("referral: no bonus amount for %q: %v", bonusType, err)
		return
	}

	err = s.credit(ctx, models.ReferralBonus{
		ID:           primitive.NewObjectID(),
		Reference:    uuid.NewString(),
		ReferrerID:   referrerID,
		ReferrerKind: string(referrerKind),
		ReferredID:   referredID,
		ReferralCode: code,
		Amount:       amount,
		BonusType:    bonusType,
		Status:       "credited",
		CreatedAt:    time.Now(),
	})
	if err == repositories.ErrAlreadyCredited {
		log.Printf("referral: bonus for referred entity %s already credited", referredID.Hex())
		return
	}
	if err != nil {
		log.Printf("referral: failed to credit code %q: %v", code, err)
		return
	}

	s.metrics.RecordReferralBonus(amount)
	log.Printf("referral: credited %d to %s %s for referring %s", amount, referrerKind, referrerID.Hex(), referredID.Hex())
}

func (s *ReferralService) resolveReferrer(ctx context.Context, kind utils.ReferralKind, code string) (primitive.ObjectID, error) {
	filter := bson.M{"referralCode": code}

	if kind == utils.VendorReferral {
		var vendor models.Vendor
		err := s.referrerCollection(kind).FindOne(ctx, filter).Decode(&vendor)
		if err == mongo.ErrNoDocuments {
			return primitive.NilObjectID, repositories.ErrNotFound
		}
		if err != nil {
			return primitive.NilObjectID, err
		}
		return vendor.ID, nil
	}

	var ambassador models.Ambassador
	err := s.referrerCollection(kind).FindOne(ctx, filter).Decode(&ambassador)
	if err == mongo.ErrNoDocuments {
		return primitive.NilObjectID, repositories.ErrNotFound
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return ambassador.ID, nil
}

func (s *ReferralService) referrerCollection(kind utils.ReferralKind) *mongo.Collection {
	if kind == utils.VendorReferral {
		return config.GetCollection(s.db, "vendors")
	}
	return config.GetCollection(s.db, "ambassadors")
}

func (s *ReferralService) lookupBonusAmount(ctx context.Context, bonusType string) (int64, error) {
	if bonusType == "" {
		return 0, repositories.ErrNotFound
	}
	var row models.BonusAmount
	err := config.GetCollection(s.db, "bonusAmounts").FindOne(ctx, bson.M{"type": bonusType}).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return 0, repositories.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return row.Amount, nil
}

// credit inserts the audit record and applies the wallet increment as one
// transaction. The unique index on referredId turns a replayed creation event
// into ErrAlreadyCredited before any wallet change.
func (s *ReferralService) credit(ctx context.Context, bonus models.ReferralBonus) error {
	session, err := s.db.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := config.GetCollection(s.db, "referralBonuses").InsertOne(sc, bonus); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, repositories.ErrAlreadyCredited
			}
			return nil, err
		}

		coll := s.referrerCollection(utils.ReferralKind(bonus.ReferrerKind))
		result, err := coll.UpdateOne(
			sc,
			bson.M{"_id": bonus.ReferrerID},
			bson.M{"$inc": bson.M{"wallet": bonus.Amount}},
		)
		if err != nil {
			return nil, err
		}
		if result.MatchedCount == 0 {
			return nil, repositories.ErrNotFound
		}
		return nil, nil
	})
	return err
}
