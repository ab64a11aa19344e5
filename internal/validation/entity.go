package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/iudanet/crmsync/internal/models"
)

// ErrValidation базовая ошибка валидации входных данных.
// HTTP-слой отображает ее в 400 Bad Request; при push ошибки валидации
// собираются по-элементно и не прерывают батч.
var ErrValidation = errors.New("validation failed")

// EntityIDPattern определяет допустимый формат entity_id
// Буквы, цифры, дефис и нижнее подчеркивание, длина 1-64 символа
var EntityIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// entityTypes реестр синхронизируемых типов сущностей.
// Неизвестные типы отклоняются на границе; добавление нового
// синхронизируемого типа требует расширения этого набора.
var entityTypes = map[string]struct{}{
	models.EntityTypeContact:  {},
	models.EntityTypeAccount:  {},
	models.EntityTypeDeal:     {},
	models.EntityTypeTask:     {},
	models.EntityTypeMeeting:  {},
	models.EntityTypeNote:     {},
	models.EntityTypeActivity: {},
}

// EntityTypes возвращает список зарегистрированных типов сущностей.
func EntityTypes() []string {
	types := make([]string, 0, len(entityTypes))
	for t := range entityTypes {
		types = append(types, t)
	}
	return types
}

// ValidateEntityType проверяет, что тип сущности зарегистрирован.
func ValidateEntityType(entityType string) error {
	if entityType == "" {
		return fmt.Errorf("%w: entity type cannot be empty", ErrValidation)
	}

	if _, ok := entityTypes[entityType]; !ok {
		return fmt.Errorf("%w: unknown entity type %q", ErrValidation, entityType)
	}

	return nil
}

// ValidateEntityID проверяет формат идентификатора сущности.
func ValidateEntityID(entityID string) error {
	if entityID == "" {
		return fmt.Errorf("%w: entity id cannot be empty", ErrValidation)
	}

	if !EntityIDPattern.MatchString(entityID) {
		return fmt.Errorf("%w: entity id can only contain letters, numbers, hyphens and underscores (max 64 characters)", ErrValidation)
	}

	return nil
}

// ValidateOperation проверяет, что операция входит в допустимый набор.
func ValidateOperation(op models.Operation) error {
	switch op {
	case models.OperationCreate, models.OperationUpdate, models.OperationDelete:
		return nil
	case "":
		return fmt.Errorf("%w: operation cannot be empty", ErrValidation)
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrValidation, op)
	}
}

// ValidateChange проверяет входящее изменение целиком:
// тип, идентификатор, операцию и наличие данных для CREATE/UPDATE.
func ValidateChange(entityType, entityID string, op models.Operation, data map[string]any) error {
	if err := ValidateEntityType(entityType); err != nil {
		return err
	}

	if err := ValidateEntityID(entityID); err != nil {
		return err
	}

	if err := ValidateOperation(op); err != nil {
		return err
	}

	// Для CREATE/UPDATE снапшот обязателен; для DELETE игнорируется
	if (op == models.OperationCreate || op == models.OperationUpdate) && len(data) == 0 {
		return fmt.Errorf("%w: data is required for %s operation", ErrValidation, op)
	}

	return nil
}
