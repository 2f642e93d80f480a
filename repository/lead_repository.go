package repository

import "loan-referral/domain"

type LeadRepository interface {
	Save(record domain.LeadRecord) error
	List() []domain.LeadRecord
}
