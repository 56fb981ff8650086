package database

import (
	"context"
	"fmt"
	"time"

	"clinicacrm/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes builds the indexes the adapter's default orderings and the
// lead lookups lean on.
func CreateIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	leadIndexes := []mongo.IndexModel{
		// LISTING: default lead ordering, newest registration first
		{
			Keys:    bson.D{{Key: "dataRegistroContato", Value: -1}},
			Options: options.Index().SetName("idx_data_registro_contato_desc"),
		},
		// DUPLICATE CHECK: phone lookups on lead creation
		{
			Keys:    bson.D{{Key: "telefone", Value: 1}},
			Options: options.Index().SetName("idx_telefone"),
		},
		// CASCADE: tag id membership sweeps
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("idx_tags"),
		},
	}
	if _, err := db.Collection(models.CollectionLeads).Indexes().CreateMany(ctx, leadIndexes); err != nil {
		return fmt.Errorf("failed to create lead indexes: %v", err)
	}

	usuarioIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email_unique").SetUnique(true),
		},
	}
	if _, err := db.Collection(models.CollectionUsuarios).Indexes().CreateMany(ctx, usuarioIndexes); err != nil {
		return fmt.Errorf("failed to create usuario indexes: %v", err)
	}

	for _, collection := range []string{
		models.CollectionMedicos,
		models.CollectionEspecialidades,
		models.CollectionProcedimentos,
		models.CollectionTags,
	} {
		idx := []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "createdAt", Value: 1}},
				Options: options.Index().SetName("idx_created_at"),
			},
		}
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %v", collection, err)
		}
	}
	return nil
}
